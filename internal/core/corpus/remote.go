package corpus

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// RemoteLoader 透過 HTTP 取得 CSV 或 YAML 食譜資料
type RemoteLoader struct {
	url       string
	format    string
	delimiter rune
	client    *resty.Client
}

// NewRemoteLoader 建立遠端來源。format 為空時依網址副檔名或 Content-Type 判斷
func NewRemoteLoader(rawURL, format, delimiter string, timeout time.Duration) *RemoteLoader {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "text/csv, application/yaml, text/yaml, text/plain").
		SetHeader("User-Agent", "recipe-suggester")

	return &RemoteLoader{
		url:       rawURL,
		format:    strings.ToLower(format),
		delimiter: parseDelimiter(delimiter),
		client:    client,
	}
}

// Load 下載並解析
func (l *RemoteLoader) Load(ctx context.Context) ([]Record, error) {
	resp, err := l.client.R().
		SetContext(ctx).
		Get(l.url)
	if err != nil {
		return nil, fmt.Errorf("fetch corpus: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("fetch corpus: unexpected status %d", resp.StatusCode())
	}

	switch l.resolveFormat(resp.Header().Get("Content-Type")) {
	case SourceYAML:
		return ParseYAML(bytes.NewReader(resp.Body()))
	default:
		return ParseCSV(bytes.NewReader(resp.Body()), l.delimiter)
	}
}

func (l *RemoteLoader) resolveFormat(contentType string) string {
	if l.format == SourceYAML || l.format == SourceCSV {
		return l.format
	}
	if strings.Contains(contentType, "yaml") {
		return SourceYAML
	}
	if u, err := url.Parse(l.url); err == nil {
		return formatFromPath(u.Path)
	}
	return SourceCSV
}

// Source 資料來源描述
func (l *RemoteLoader) Source() string {
	return "remote:" + l.url
}
