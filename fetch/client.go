package fetch

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/transform"
)

// DefaultTimeout bounds every upstream request.
const DefaultTimeout = 30 * time.Second

// Client fetches upstream reports. Exchange endpoints publish CP950
// encoded text, so payloads are decoded from Big5 with replacement of
// undecodable bytes.
//
// Some TWSE certificate chains fail strict verification on certain
// hosts. On the first TLS verification failure the client downgrades
// itself and keeps certificate verification off for the rest of its
// lifetime. The flag lives on the Client, not in process-global state,
// so each instance downgrades independently.
type Client struct {
	verified *http.Client
	insecure *http.Client

	verifyCertificates bool

	log *logrus.Entry
}

// NewClient builds a Client with the given per-request timeout.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		verified: &http.Client{Timeout: timeout},
		insecure: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		},
		verifyCertificates: true,
		log:                logrus.WithField("component", "fetch"),
	}
}

// Verifying reports whether the client still verifies certificates.
func (c *Client) Verifying() bool {
	return c.verifyCertificates
}

// Get fetches url and returns the payload decoded from Big5. A non-2xx
// status is an error. A TLS verification failure triggers exactly one
// retry without verification; further failures propagate.
func (c *Client) Get(url string) (string, error) {
	resp, err := c.do(url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	decoded := transform.NewReader(resp.Body, traditionalchinese.Big5.NewDecoder())
	body, err := io.ReadAll(decoded)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", url, err)
	}
	return string(body), nil
}

// GetRaw fetches url and returns the payload as sent, for endpoints
// that are not CP950 encoded (the taifex HTML pages are UTF-8). Same
// status handling and TLS fallback as Get.
func (c *Client) GetRaw(url string) (string, error) {
	resp, err := c.do(url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", url, err)
	}
	return string(body), nil
}

func (c *Client) do(url string) (*http.Response, error) {
	client := c.verified
	if !c.verifyCertificates {
		client = c.insecure
	}

	resp, err := client.Get(url)
	if err != nil && c.verifyCertificates && isCertificateError(err) {
		c.log.WithError(err).Warn("certificate verification failed, retrying without verification")
		c.verifyCertificates = false
		resp, err = c.insecure.Get(url)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %s fetching %s", resp.Status, url)
	}
	return resp, nil
}

// isCertificateError matches certificate verification failures only:
// those are the failures InsecureSkipVerify can cure. Other TLS
// handshake or protocol errors propagate without a downgrade.
func isCertificateError(err error) bool {
	var certErr *tls.CertificateVerificationError
	var unknownAuthority x509.UnknownAuthorityError
	var hostname x509.HostnameError
	var invalid x509.CertificateInvalidError
	return errors.As(err, &certErr) ||
		errors.As(err, &unknownAuthority) ||
		errors.As(err, &hostname) ||
		errors.As(err, &invalid)
}
