package firebase

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// Folders images may be stored under.
var Folders = map[string]bool{
	"trends":     true,
	"colors":     true,
	"categories": true,
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// sanitizeFilename removes special characters from filenames and limits length.
func sanitizeFilename(filename string) string {
	sanitized := unsafeFilenameChars.ReplaceAllString(filename, "_")

	if len(sanitized) > 100 {
		sanitized = sanitized[:100]
	}
	if sanitized == "" || sanitized == "." || sanitized == ".." {
		sanitized = "file"
	}
	return sanitized
}

// isPrivateIP checks whether an IP address is a private/reserved address.
func isPrivateIP(ip net.IP) bool {
	privateRanges := []*net.IPNet{
		parseCIDR("10.0.0.0/8"),
		parseCIDR("172.16.0.0/12"),
		parseCIDR("192.168.0.0/16"),
		parseCIDR("127.0.0.0/8"),
		parseCIDR("169.254.0.0/16"),
		parseCIDR("0.0.0.0/8"),
		parseCIDR("::1/128"),
		parseCIDR("fc00::/7"),
		parseCIDR("fe80::/10"),
	}

	for _, network := range privateRanges {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

func parseCIDR(cidr string) *net.IPNet {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		panic(fmt.Sprintf("invalid CIDR: %s", cidr))
	}
	return network
}

// validateExternalURL validates that a URL is safe to fetch (prevents SSRF).
func validateExternalURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %v", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("URL scheme '%s' is not allowed; only http and https are permitted", parsed.Scheme)
	}

	host := parsed.Hostname()
	if host == "" {
		return fmt.Errorf("URL has no hostname")
	}
	if strings.EqualFold(host, "localhost") {
		return fmt.Errorf("requests to localhost are not allowed")
	}

	ips, err := net.LookupIP(host)
	if err != nil {
		return fmt.Errorf("failed to resolve hostname '%s': %v", host, err)
	}
	for _, ip := range ips {
		if isPrivateIP(ip) {
			return fmt.Errorf("URL resolves to private IP address %s, which is not allowed", ip.String())
		}
	}
	return nil
}

// objectPath builds "<folder>/<unix>_<short id>_<filename>".
func objectPath(folder, filename string, now time.Time) string {
	return fmt.Sprintf(
		"%s/%d_%s_%s",
		folder,
		now.Unix(),
		uuid.New().String()[:8],
		sanitizeFilename(filename),
	)
}

// PublicURL is the URL an object is served from once it is publicly readable.
func PublicURL(bucket, objectPath string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, objectPath)
}

// Storage stores images in the configured Firebase Storage bucket.
type Storage struct {
	App        *firebase.App
	Bucket     string
	HTTPClient *http.Client
	Now        func() time.Time
}

// Init creates the Firebase app. credentials is either inline JSON or a
// file path; empty falls back to application default credentials.
func Init(ctx context.Context, credentials, bucket string) (*Storage, error) {
	var opts []option.ClientOption

	switch {
	case strings.HasPrefix(credentials, "{"):
		logrus.Info("Using Firebase credentials from environment variable")
		opts = append(opts, option.WithCredentialsJSON([]byte(credentials)))
	case credentials != "":
		logrus.WithField("file", credentials).Info("Using Firebase credentials from file")
		opts = append(opts, option.WithCredentialsFile(credentials))
	default:
		logrus.Warn("GOOGLE_APPLICATION_CREDENTIALS not set, using default credentials")
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{StorageBucket: bucket}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase init failed: %w", err)
	}

	logrus.WithField("bucket", bucket).Info("Firebase initialized successfully")
	return &Storage{
		App:        app,
		Bucket:     bucket,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Now:        time.Now,
	}, nil
}

func (s *Storage) bucket(ctx context.Context) (*storage.BucketHandle, error) {
	if s == nil || s.App == nil {
		return nil, fmt.Errorf("firebase app not initialized")
	}
	if s.Bucket == "" {
		return nil, fmt.Errorf("FIREBASE_STORAGE_BUCKET not set")
	}

	client, err := s.App.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get storage client: %w", err)
	}
	return client.Bucket(s.Bucket)
}

func (s *Storage) write(ctx context.Context, path, contentType string, r io.Reader) (string, error) {
	bucket, err := s.bucket(ctx)
	if err != nil {
		return "", err
	}

	obj := bucket.Object(path)
	wc := obj.NewWriter(ctx)
	wc.ContentType = contentType

	if _, err := io.Copy(wc, r); err != nil {
		wc.Close()
		return "", fmt.Errorf("failed to upload %s: %w", path, err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize upload: %w", err)
	}

	// The returned URL must work without authentication.
	if err := obj.ACL().Set(ctx, storage.AllUsers, storage.RoleReader); err != nil {
		logrus.WithError(err).WithField("object", path).Warn("failed to set public ACL")
	}

	return PublicURL(s.Bucket, path), nil
}

func (s *Storage) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// UploadImage stores file under folder and returns its public URL.
func (s *Storage) UploadImage(ctx context.Context, file io.Reader, filename, contentType, folder string) (string, error) {
	return s.write(ctx, objectPath(folder, filename, s.now()), contentType, file)
}

// RehostImage downloads an external image and stores a copy under folder.
func (s *Storage) RehostImage(ctx context.Context, imageURL, folder string) (string, error) {
	if err := validateExternalURL(imageURL); err != nil {
		return "", fmt.Errorf("URL validation failed for %s: %v", imageURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", err
	}
	client := s.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download image from %s: %v", imageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download image: HTTP %d", resp.StatusCode)
	}
	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("URL %s returned non-image content-type %q", imageURL, contentType)
	}

	name := "image"
	if parsed, err := url.Parse(imageURL); err == nil {
		if i := strings.LastIndex(parsed.Path, "/"); i >= 0 && i+1 < len(parsed.Path) {
			name = parsed.Path[i+1:]
		}
	}
	return s.write(ctx, objectPath(folder, name, s.now()), contentType, resp.Body)
}

// DeleteFile deletes a file from Firebase Storage given its object path.
func (s *Storage) DeleteFile(ctx context.Context, path string) error {
	bucket, err := s.bucket(ctx)
	if err != nil {
		return err
	}
	if err := bucket.Object(path).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete object %s: %w", path, err)
	}

	logrus.WithFields(logrus.Fields{"object": path, "bucket": s.Bucket}).Info("deleted file")
	return nil
}
