package samlmeta

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
)

// ErrNoSigningCertificate is returned when the descriptor carries no usable
// signing key.
var ErrNoSigningCertificate = errors.New("samlmeta: no signing certificate in descriptor")

const (
	metadataCacheKey = "saml_metadata"
	metadataCacheTTL = 24 * time.Hour
)

// Service fetches and caches the upstream IdP's SAML descriptor.
type Service struct {
	url    string
	client *http.Client
	cache  *cache.Cache
}

// Option configures a Service.
type Option func(*Service)

// WithHTTPClient replaces the HTTP client used for metadata fetches.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Service) { s.client = c }
}

// NewService builds a Service for the given metadata URL.
func NewService(metadataURL string, opts ...Option) *Service {
	s := &Service{
		url:    metadataURL,
		client: &http.Client{Timeout: 10 * time.Second},
		cache:  cache.New(metadataCacheTTL, metadataCacheTTL),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Metadata returns the raw descriptor XML, fetching it at most once per cache
// window.
func (s *Service) Metadata(ctx context.Context) ([]byte, error) {
	if raw, ok := s.cache.Get(metadataCacheKey); ok {
		return raw.([]byte), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("samlmeta: build request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("samlmeta: fetch descriptor: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("samlmeta: fetch descriptor: unexpected status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("samlmeta: read descriptor: %w", err)
	}

	s.cache.Set(metadataCacheKey, raw, cache.DefaultExpiration)
	return raw, nil
}

// SigningCertificate extracts the base64 X509 signing certificate from the
// descriptor. Descriptors that mark no key for signing fall back to the first
// key present.
func (s *Service) SigningCertificate(ctx context.Context) (string, error) {
	raw, err := s.Metadata(ctx)
	if err != nil {
		return "", err
	}

	var doc entityDescriptor
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return "", fmt.Errorf("samlmeta: parse descriptor: %w", err)
	}

	var fallback string
	for _, kd := range doc.IDPSSO.KeyDescriptors {
		if kd.Certificate == "" {
			continue
		}
		if kd.Use == "signing" {
			return kd.Certificate, nil
		}
		if fallback == "" {
			fallback = kd.Certificate
		}
	}
	if fallback != "" {
		return fallback, nil
	}
	return "", ErrNoSigningCertificate
}

type entityDescriptor struct {
	XMLName xml.Name         `xml:"EntityDescriptor"`
	IDPSSO  idpSSODescriptor `xml:"IDPSSODescriptor"`
}

type idpSSODescriptor struct {
	KeyDescriptors []keyDescriptor `xml:"KeyDescriptor"`
}

type keyDescriptor struct {
	Use         string `xml:"use,attr"`
	Certificate string `xml:"KeyInfo>X509Data>X509Certificate"`
}
