package catalog

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// S3Lister lists the public GOES16 archive bucket. Access is anonymous;
// the bucket requires no credentials.
type S3Lister struct {
	client  *s3.Client
	bucket  string
	product string
}

// S3Options configures the object-store lister.
type S3Options struct {
	Bucket  string
	Product string // archive product prefix, e.g. ABI-L1b-RadF
	Region  string
	// Endpoint overrides the S3 endpoint (used in tests and for mirrors).
	Endpoint string
}

// NewS3Lister creates a lister over the given bucket and product prefix.
func NewS3Lister(ctx context.Context, opts S3Options) (*S3Lister, error) {
	if opts.Region == "" {
		opts.Region = "us-east-1"
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(opts.Region))
	if err != nil {
		return nil, eris.Wrap(err, "s3 lister: load aws config")
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.Credentials = aws.AnonymousCredentials{}
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Lister{client: client, bucket: opts.Bucket, product: opts.Product}, nil
}

// List returns the bucket entries under the hour prefix that covers ts.
// The archive lays keys out as product/YYYY/DDD/HH/ with DDD the day of
// year.
func (l *S3Lister) List(ctx context.Context, ts time.Time) ([]Entry, error) {
	prefix := fmt.Sprintf("%s/%d/%03d/%02d/", l.product, ts.Year(), ts.YearDay(), ts.Hour())

	zap.L().Debug("s3: listing", zap.String("bucket", l.bucket), zap.String("prefix", prefix))

	var entries []Entry
	paginator := s3.NewListObjectsV2Paginator(l.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(l.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, eris.Wrapf(err, "s3 lister: list %s/%s", l.bucket, prefix)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			stamp, err := ParseGOESKey(key)
			if err != nil {
				continue
			}
			size := int64(-1)
			if obj.Size != nil {
				size = *obj.Size
			}
			entries = append(entries, Entry{
				Name:      path.Base(key),
				URL:       fmt.Sprintf("https://%s.s3.amazonaws.com/%s", l.bucket, key),
				Timestamp: stamp,
				Size:      size,
			})
		}
	}

	return entries, nil
}

// goesStampRe matches the scan-start field of archive keys, e.g.
// OR_ABI-L1b-RadF-M6C13_G16_s20193510000217_e..._c....nc. The digits are
// year, day of year, hour, minute, second, tenth of second.
var goesStampRe = regexp.MustCompile(`_s(\d{4})(\d{3})(\d{2})(\d{2})(\d{2})\d`)

// ParseGOESKey extracts the scan-start instant from an archive object key.
func ParseGOESKey(key string) (time.Time, error) {
	m := goesStampRe.FindStringSubmatch(key)
	if m == nil {
		return time.Time{}, eris.Errorf("s3 lister: no scan-start stamp in key %q", key)
	}
	year, _ := strconv.Atoi(m[1])
	doy, _ := strconv.Atoi(m[2])
	hour, _ := strconv.Atoi(m[3])
	minute, _ := strconv.Atoi(m[4])
	second, _ := strconv.Atoi(m[5])
	return time.Date(year, 1, 1, hour, minute, second, 0, time.UTC).AddDate(0, 0, doy-1), nil
}
