package transfer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ds124wfegd/image-resizer/internal/entity"
	"github.com/ds124wfegd/image-resizer/internal/pkg/storage"
)

type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

type Uploader interface {
	Upload(ctx context.Context, rawURL string, data []byte, mimeType string) error
}

type Options struct {
	FetchTimeout   time.Duration
	UploadTimeout  time.Duration
	MaxSourceBytes int64
}

// Client fetches sources and uploads results over http(s), and over
// file:// when a FileStorage is configured.
type Client struct {
	httpClient *http.Client
	files      storage.FileStorage
	opts       Options
	logger     logrus.FieldLogger
}

func NewClient(opts Options, files storage.FileStorage, logger logrus.FieldLogger) *Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          16,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &Client{
		httpClient: &http.Client{Transport: transport},
		files:      files,
		opts:       opts,
		logger:     logger,
	}
}

func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, entity.NewError(entity.KindFetch, fmt.Errorf("parse source url: %w", err))
	}

	then := time.Now()
	var data []byte

	switch u.Scheme {
	case "http", "https":
		data, err = c.fetchHTTP(ctx, u)
	case "file":
		data, err = c.fetchFile(u)
	default:
		err = fmt.Errorf("unsupported source scheme %q", u.Scheme)
	}
	if err != nil {
		c.logger.WithFields(logrus.Fields{
			"url":   rawURL,
			"error": err.Error(),
		}).Warn("Fetching source failed")
		return nil, entity.NewError(entity.KindFetch, err)
	}

	c.logger.WithFields(logrus.Fields{
		"url":      rawURL,
		"bytes":    len(data),
		"duration": time.Since(then),
	}).Info("Fetched source")
	return data, nil
}

func (c *Client) fetchHTTP(ctx context.Context, u *url.URL) ([]byte, error) {
	if c.opts.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.FetchTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP %d from upstream", resp.StatusCode)
	}

	return c.readLimited(resp.Body)
}

func (c *Client) fetchFile(u *url.URL) ([]byte, error) {
	if c.files == nil {
		return nil, fmt.Errorf("file sources are disabled")
	}

	rc, err := c.files.Get(u.Path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return c.readLimited(rc)
}

func (c *Client) readLimited(r io.Reader) ([]byte, error) {
	if c.opts.MaxSourceBytes <= 0 {
		return io.ReadAll(r)
	}

	data, err := io.ReadAll(io.LimitReader(r, c.opts.MaxSourceBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(data)) > c.opts.MaxSourceBytes {
		return nil, fmt.Errorf("source larger than %d bytes", c.opts.MaxSourceBytes)
	}
	return data, nil
}

func (c *Client) Upload(ctx context.Context, rawURL string, data []byte, mimeType string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return entity.NewError(entity.KindUpload, fmt.Errorf("parse destination url: %w", err))
	}

	then := time.Now()

	switch u.Scheme {
	case "http", "https":
		err = c.uploadHTTP(ctx, u, data, mimeType)
	case "file":
		if c.files == nil {
			err = fmt.Errorf("file destinations are disabled")
		} else {
			err = c.files.Save(u.Path, bytes.NewReader(data))
		}
	default:
		err = fmt.Errorf("unsupported destination scheme %q", u.Scheme)
	}
	if err != nil {
		c.logger.WithFields(logrus.Fields{
			"url":   rawURL,
			"error": err.Error(),
		}).Warn("Uploading result failed")
		return entity.NewError(entity.KindUpload, err)
	}

	c.logger.WithFields(logrus.Fields{
		"url":      rawURL,
		"bytes":    len(data),
		"duration": time.Since(then),
	}).Info("Uploaded result")
	return nil
}

func (c *Client) uploadHTTP(ctx context.Context, u *url.URL, data []byte, mimeType string) error {
	if c.opts.UploadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.UploadTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u.String(), bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mimeType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("HTTP %d from destination", resp.StatusCode)
	}
	return nil
}
