// Package cloudinary uploads product images with an unsigned preset.
package cloudinary

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

const (
	DefaultBaseURL = "https://api.cloudinary.com/v1_1"

	defaultTimeout = 60 * time.Second
)

var _ port.ImageUploader = Uploader{}

var ErrUpload = domain.ErrImageUpload

type UploaderOpt func(*Uploader) error

// BaseURLOpt replaces the API root the cloud name is appended to.
func BaseURLOpt(baseURL string) UploaderOpt {
	return func(u *Uploader) error {
		if _, err := url.ParseRequestURI(baseURL); err != nil {
			return err
		}
		u.baseURL = strings.TrimRight(baseURL, "/")
		return nil
	}
}

func HTTPClientOpt(hc *http.Client) UploaderOpt {
	return func(u *Uploader) error {
		if hc == nil {
			return errors.New("http client is nil")
		}
		u.hc = hc
		return nil
	}
}

// FolderOpt stores uploads under the given asset folder.
func FolderOpt(folder string) UploaderOpt {
	return func(u *Uploader) error {
		u.folder = folder
		return nil
	}
}

type Uploader struct {
	baseURL   string
	cloudName string
	preset    string
	folder    string
	hc        *http.Client
}

func NewUploader(cloudName, preset string, opts ...UploaderOpt) (Uploader, error) {
	const op = "cloudinary.NewUploader"

	if cloudName == "" || preset == "" {
		return Uploader{}, fmt.Errorf("%s: cloud name and upload preset are required", op)
	}

	u := Uploader{
		baseURL:   DefaultBaseURL,
		cloudName: cloudName,
		preset:    preset,
		hc:        &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if err := opt(&u); err != nil {
			return Uploader{}, fmt.Errorf("%s: %w", op, err)
		}
	}
	return u, nil
}

func (u Uploader) endpoint() string {
	return u.baseURL + "/" + url.PathEscape(u.cloudName) + "/image/upload"
}

// Upload sends one file and reports the request body progress to progress,
// which may be nil.
func (u Uploader) Upload(
	ctx context.Context, f port.ImageFile, progress port.ProgressFunc,
) (domain.ProductImage, error) {
	const op = "Uploader.Upload"
	log := slog.With("op", op, "file", f.Name)

	body, contentType, err := u.multipartBody(f)
	if err != nil {
		return domain.ProductImage{}, fmt.Errorf("%s: %w", op, err)
	}

	total := int64(body.Len())
	var reader io.Reader = body
	if progress != nil {
		reader = &progressReader{r: body, total: total, fn: progress}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint(), reader)
	if err != nil {
		return domain.ProductImage{}, fmt.Errorf("%s: %w", op, err)
	}
	req.ContentLength = total
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	res, err := u.hc.Do(req)
	if err != nil {
		return domain.ProductImage{}, fmt.Errorf("%s: %w", op, err)
	}
	defer res.Body.Close()

	var out struct {
		SecureURL string `json:"secure_url"`
		URL       string `json:"url"`
		PublicID  string `json:"public_id"`
		Error     struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	err = json.NewDecoder(io.LimitReader(res.Body, 1<<20)).Decode(&out)
	if err != nil && res.StatusCode == http.StatusOK {
		return domain.ProductImage{}, fmt.Errorf("%s: %w", op, err)
	}

	if res.StatusCode != http.StatusOK {
		if out.Error.Message == "" {
			out.Error.Message = http.StatusText(res.StatusCode)
		}
		log.Warn("upload rejected", "status", res.StatusCode, "msg", out.Error.Message)
		return domain.ProductImage{}, fmt.Errorf(
			"%s: %w: %s", op, ErrUpload, out.Error.Message,
		)
	}

	img := domain.ProductImage{URL: out.SecureURL, PublicID: out.PublicID}
	if img.URL == "" {
		img.URL = out.URL
	}
	if img.URL == "" {
		return domain.ProductImage{}, fmt.Errorf("%s: %w: empty url", op, ErrUpload)
	}
	log.Debug("image uploaded", "publicID", img.PublicID)
	return img, nil
}

func (u Uploader) multipartBody(f port.ImageFile) (*bytes.Buffer, string, error) {
	if f.Data == nil {
		return nil, "", fmt.Errorf("%w: %q has no data", ErrUpload, f.Name)
	}

	body := new(bytes.Buffer)
	mw := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(
		`form-data; name="file"; filename=%q`, f.Name,
	))
	contentType := f.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, f.Data); err != nil {
		return nil, "", err
	}

	if err := mw.WriteField("upload_preset", u.preset); err != nil {
		return nil, "", err
	}
	if u.folder != "" {
		if err := mw.WriteField("folder", u.folder); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return body, mw.FormDataContentType(), nil
}

type progressReader struct {
	r     io.Reader
	sent  int64
	total int64
	fn    port.ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		p.fn(p.sent, p.total)
	}
	return n, err
}
