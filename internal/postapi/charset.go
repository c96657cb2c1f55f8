package postapi

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// decodedBody returns the response body transcoded to UTF-8 when the
// Content-Type declares another charset (e.g. "application/json; charset=iso-8859-1")
func decodedBody(resp *http.Response) (io.Reader, error) {
	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		return resp.Body, nil
	}
	_, params, err := mime.ParseMediaType(ct)
	if err != nil {
		return resp.Body, nil
	}
	charset := strings.ToLower(strings.TrimSpace(params["charset"]))
	if charset == "" || charset == "utf-8" || charset == "utf8" {
		return resp.Body, nil
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset '%s': %w", charset, err)
	}
	return transform.NewReader(resp.Body, enc.NewDecoder()), nil
}
