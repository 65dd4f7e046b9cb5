package banking

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Client wraps the IFSC directory HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a directory client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Fetch loads a branch by IFSC. The code must already be normalised.
func (c *Client) Fetch(ctx context.Context, code string) (*Branch, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s", c.baseURL, code), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ifsc directory: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrUnknownIFSC
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("ifsc directory returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return nil, fmt.Errorf("ifsc directory: read: %w", err)
	}
	return parseBranch(code, body)
}

func parseBranch(code string, body []byte) (*Branch, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("ifsc directory: malformed payload")
	}
	doc := gjson.ParseBytes(body)
	bank := doc.Get("BANK").String()
	if bank == "" {
		return nil, ErrUnknownIFSC
	}
	ifsc := doc.Get("IFSC").String()
	if ifsc == "" {
		ifsc = code
	}
	return &Branch{
		IFSC:     NormalizeIFSC(ifsc),
		Bank:     bank,
		BankCode: doc.Get("BANKCODE").String(),
		Branch:   doc.Get("BRANCH").String(),
		Address:  doc.Get("ADDRESS").String(),
		City:     doc.Get("CITY").String(),
		District: doc.Get("DISTRICT").String(),
		State:    doc.Get("STATE").String(),
		MICR:     doc.Get("MICR").String(),
		Contact:  doc.Get("CONTACT").String(),
		UPI:      doc.Get("UPI").Bool(),
		NEFT:     doc.Get("NEFT").Bool(),
		RTGS:     doc.Get("RTGS").Bool(),
		IMPS:     doc.Get("IMPS").Bool(),
	}, nil
}
