// Package gallery wraps the upstream social-media content API the shop
// publishes its portfolio on.  The application consumes it read-only:
// paginated media lists plus the child items of carousel posts.  Responses
// are proxied to visitors through the Redis response cache; nothing here is
// persisted.
package gallery

import (
    "context"
    "encoding/json"
    "fmt"
    "net/http"
    "net/url"
    "strconv"
    "strings"
    "time"
)

// Media is one published item as returned by the content API.
type Media struct {
    ID           string `json:"id"`
    Caption      string `json:"caption,omitempty"`
    MediaType    string `json:"media_type"` // IMAGE, VIDEO or CAROUSEL_ALBUM
    MediaURL     string `json:"media_url"`
    ThumbnailURL string `json:"thumbnail_url,omitempty"`
    Permalink    string `json:"permalink,omitempty"`
    Timestamp    string `json:"timestamp,omitempty"`
}

// Page is one page of media with an opaque cursor for the next page.
// After is empty on the last page.
type Page struct {
    Items []Media `json:"items"`
    After string  `json:"after,omitempty"`
}

// upstreamPage mirrors the wire shape of the content API: a data array and
// a paging envelope with cursors.
type upstreamPage struct {
    Data   []Media `json:"data"`
    Paging struct {
        Cursors struct {
            After string `json:"after"`
        } `json:"cursors"`
        Next string `json:"next"`
    } `json:"paging"`
}

// Client calls the content API over HTTP.  The zero value is not usable;
// construct with NewClient.
type Client struct {
    baseURL string
    token   string
    http    *http.Client
}

// NewClient builds a client for the given API base URL and access token.
// The HTTP timeout bounds every upstream call; the gallery is decorative
// and must never hold a visitor request for long.
func NewClient(baseURL, token string) *Client {
    return &Client{
        baseURL: strings.TrimRight(baseURL, "/"),
        token:   token,
        http:    &http.Client{Timeout: 10 * time.Second},
    }
}

const mediaFields = "id,caption,media_type,media_url,thumbnail_url,permalink,timestamp"

// Media fetches one page of published items.  after is the cursor from a
// previous page, empty for the first page.  limit is clamped to 1..50.
func (c *Client) Media(ctx context.Context, after string, limit int) (Page, error) {
    if limit < 1 {
        limit = 12
    }
    if limit > 50 {
        limit = 50
    }
    v := url.Values{}
    v.Set("fields", mediaFields)
    v.Set("limit", strconv.Itoa(limit))
    v.Set("access_token", c.token)
    if after != "" {
        v.Set("after", after)
    }
    return c.fetch(ctx, c.baseURL+"/me/media?"+v.Encode())
}

// Children fetches the sub-items of a carousel post.
func (c *Client) Children(ctx context.Context, mediaID string) (Page, error) {
    v := url.Values{}
    v.Set("fields", mediaFields)
    v.Set("access_token", c.token)
    return c.fetch(ctx, c.baseURL+"/"+url.PathEscape(mediaID)+"/children?"+v.Encode())
}

func (c *Client) fetch(ctx context.Context, rawURL string) (Page, error) {
    req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
    if err != nil {
        return Page{}, err
    }
    resp, err := c.http.Do(req)
    if err != nil {
        return Page{}, err
    }
    defer resp.Body.Close()
    if resp.StatusCode != http.StatusOK {
        return Page{}, fmt.Errorf("content api: unexpected status %d", resp.StatusCode)
    }
    var up upstreamPage
    if err := json.NewDecoder(resp.Body).Decode(&up); err != nil {
        return Page{}, fmt.Errorf("content api: decode: %w", err)
    }
    page := Page{Items: up.Data}
    if page.Items == nil {
        page.Items = []Media{}
    }
    // Only expose the cursor when the upstream says another page exists.
    if up.Paging.Next != "" {
        page.After = up.Paging.Cursors.After
    }
    return page, nil
}
