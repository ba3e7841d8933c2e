// Package orthanc is a read-only client for the Orthanc DICOM server REST API.
package orthanc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/senemedecine/api/internal/platform/apperr"
)

const defaultPreviewType = "image/png"

// maxPreviewBytes bounds a rendered instance preview.
var maxPreviewBytes int64 = 32 << 20

var idPattern = regexp.MustCompile(`^[A-Za-z0-9-]+$`)

// ValidID reports whether id is a well-formed Orthanc identifier.
func ValidID(id string) bool {
	return idPattern.MatchString(id)
}

// Config holds connection settings.
type Config struct {
	BaseURL  string
	Username string
	Password string
	Timeout  time.Duration
}

// Client forwards GET requests to Orthanc with server-side basic auth.
type Client struct {
	baseURL  string
	username string
	password string
	http     *http.Client
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		username: cfg.Username,
		password: cfg.Password,
		http:     &http.Client{Timeout: timeout},
	}
}

// Image is a rendered preview.
type Image struct {
	ContentType string
	Data        []byte
}

func (c *Client) System(ctx context.Context) (json.RawMessage, error) {
	return c.getJSON(ctx, "/system", nil)
}

// Studies lists all studies with their main DICOM tags.
func (c *Client) Studies(ctx context.Context) (json.RawMessage, error) {
	return c.getJSON(ctx, "/studies", url.Values{"expand": {""}})
}

func (c *Client) Study(ctx context.Context, id string) (json.RawMessage, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	return c.getJSON(ctx, "/studies/"+id, nil)
}

func (c *Client) StudySeries(ctx context.Context, id string) (json.RawMessage, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	return c.getJSON(ctx, "/studies/"+id+"/series", nil)
}

func (c *Client) Series(ctx context.Context, id string) (json.RawMessage, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	return c.getJSON(ctx, "/series/"+id, nil)
}

// InstancePreview returns the PNG (or whatever Orthanc renders) of an instance.
func (c *Client) InstancePreview(ctx context.Context, id string) (*Image, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	resp, err := c.get(ctx, "/instances/"+id+"/preview", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPreviewBytes+1))
	if err != nil {
		return nil, apperr.Upstream(err, "Erreur de lecture de l'image Orthanc")
	}
	if int64(len(data)) > maxPreviewBytes {
		return nil, apperr.Upstream(nil, "Image Orthanc trop volumineuse (plus de %d octets)", maxPreviewBytes)
	}
	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = defaultPreviewType
	}
	return &Image{ContentType: ct, Data: data}, nil
}

// StudyExists reports whether Orthanc knows the study.
func (c *Client) StudyExists(ctx context.Context, id string) (bool, error) {
	_, err := c.Study(ctx, id)
	if err == nil {
		return true, nil
	}
	if apperr.StatusCode(err) == http.StatusNotFound {
		return false, nil
	}
	return false, err
}

func checkID(id string) error {
	if !ValidID(id) {
		return apperr.Validation("Identifiant Orthanc invalide")
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	resp, err := c.get(ctx, path, query)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, apperr.Upstream(err, "Réponse Orthanc invalide")
	}
	return body, nil
}

// get performs the request and maps upstream failures: 404 stays 404,
// everything else becomes a 502.
func (c *Client) get(ctx context.Context, path string, query url.Values) (*http.Response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + encodeQuery(query)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build orthanc request: %w", err)
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperr.Upstream(err, "Serveur Orthanc injoignable")
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, apperr.NotFound("Ressource DICOM introuvable")
	case resp.StatusCode >= 300:
		resp.Body.Close()
		return nil, apperr.Upstream(fmt.Errorf("orthanc %s: status %d", path, resp.StatusCode),
			"Erreur du serveur Orthanc (%d)", resp.StatusCode)
	}
	return resp, nil
}

// encodeQuery writes flag parameters such as "expand" without a trailing "=".
func encodeQuery(q url.Values) string {
	parts := make([]string, 0, len(q))
	for k, vs := range q {
		for _, v := range vs {
			if v == "" {
				parts = append(parts, url.QueryEscape(k))
				continue
			}
			parts = append(parts, url.QueryEscape(k)+"="+url.QueryEscape(v))
		}
	}
	return strings.Join(parts, "&")
}
