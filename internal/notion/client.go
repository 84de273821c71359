// Package notion fetches and appends block trees through the Notion API.
package notion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gerunddev/notionbridge/internal/blocks"
	"github.com/gerunddev/notionbridge/internal/logger"
	"github.com/gerunddev/notionbridge/internal/resolver"
	"github.com/jomei/notionapi"
)

// MaxBatch is the most children one append request may carry
const MaxBatch = 100

// ErrInvalidPageID is returned when a page reference has no recognizable ID
var ErrInvalidPageID = errors.New("not a Notion page ID or URL")

// BlockService is the part of notionapi.BlockService the client uses
type BlockService interface {
	GetChildren(ctx context.Context, id notionapi.BlockID, pagination *notionapi.Pagination) (*notionapi.GetChildrenResponse, error)
	AppendChildren(ctx context.Context, id notionapi.BlockID, request *notionapi.AppendBlockChildrenRequest) (*notionapi.AppendBlockChildrenResponse, error)
	Delete(ctx context.Context, id notionapi.BlockID) (notionapi.Block, error)
}

type PageService interface {
	Get(ctx context.Context, id notionapi.PageID) (*notionapi.Page, error)
}

type DatabaseService interface {
	Get(ctx context.Context, id notionapi.DatabaseID) (*notionapi.Database, error)
}

type UserService interface {
	Get(ctx context.Context, id notionapi.UserID) (*notionapi.User, error)
}

// Services groups the API services the client calls. Nil lookup services
// disable the matching ID to name resolution.
type Services struct {
	Blocks    BlockService
	Pages     PageService
	Databases DatabaseService
	Users     UserService
}

// Client moves block trees between the converter and the Notion API
type Client struct {
	svc      Services
	pageSize int
	log      *logger.Logger
}

// Options configures a Client
type Options struct {
	PageSize int
	Timeout  time.Duration
	Logger   *logger.Logger
}

// NewClient creates a client authenticated with an integration token
func NewClient(token string, opts Options) *Client {
	httpClient := &http.Client{Timeout: opts.Timeout}
	api := notionapi.NewClient(notionapi.Token(token), notionapi.WithHTTPClient(httpClient))
	return NewWithServices(Services{
		Blocks:    api.Block,
		Pages:     api.Page,
		Databases: api.Database,
		Users:     api.User,
	}, opts)
}

// NewWithServices creates a client over explicit services
func NewWithServices(svc Services, opts Options) *Client {
	pageSize := opts.PageSize
	if pageSize <= 0 || pageSize > MaxBatch {
		pageSize = MaxBatch
	}
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	return &Client{svc: svc, pageSize: pageSize, log: log}
}

// FetchBlocks returns the children of a page or block with every nested
// level hydrated into Children
func (c *Client) FetchBlocks(ctx context.Context, id string) ([]blocks.Block, error) {
	var out []blocks.Block
	cursor := notionapi.Cursor("")

	for {
		resp, err := c.svc.Blocks.GetChildren(ctx, notionapi.BlockID(id), &notionapi.Pagination{
			StartCursor: cursor,
			PageSize:    c.pageSize,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch children of %s: %w", id, err)
		}

		page, err := fromAPI(resp.Results)
		if err != nil {
			return nil, err
		}
		for i := range page {
			if !page[i].HasChildren || page[i].ID == "" {
				continue
			}
			children, err := c.FetchBlocks(ctx, page[i].ID)
			if err != nil {
				return nil, err
			}
			page[i].Children = children
		}
		c.log.Debug("fetched children", "parent", id, "count", len(page), "has_more", resp.HasMore)
		out = append(out, page...)

		if !resp.HasMore || resp.NextCursor == "" {
			break
		}
		cursor = notionapi.Cursor(resp.NextCursor)
	}

	return out, nil
}

// AppendBlocks appends creation payloads under a page or block and returns
// how many blocks were created. Table and column layouts are sent whole;
// other children are appended under their parent once it exists.
func (c *Client) AppendBlocks(ctx context.Context, id string, bs []blocks.Block) (int, error) {
	created := 0

	for start := 0; start < len(bs); start += MaxBatch {
		end := min(start+MaxBatch, len(bs))
		batch := make([]blocks.Block, end-start)
		deferred := make([][]blocks.Block, end-start)
		for i, b := range bs[start:end] {
			if keepsChildren(b.Type) {
				batch[i] = b
				continue
			}
			deferred[i] = b.ChildBlocks()
			batch[i] = withoutChildren(b)
		}

		payload, err := toAPI(batch)
		if err != nil {
			return created, err
		}
		resp, err := c.svc.Blocks.AppendChildren(ctx, notionapi.BlockID(id), &notionapi.AppendBlockChildrenRequest{
			Children: payload,
		})
		if err != nil {
			return created, fmt.Errorf("failed to append %d blocks to %s: %w", len(batch), id, err)
		}
		for _, b := range batch {
			created += countBlocks(b)
		}
		c.log.Debug("appended children", "parent", id, "count", len(batch))

		results, err := fromAPI(resp.Results)
		if err != nil {
			return created, err
		}
		for i, children := range deferred {
			if len(children) == 0 {
				continue
			}
			if i >= len(results) || results[i].ID == "" {
				return created, fmt.Errorf("append to %s returned no id for block %d", id, start+i)
			}
			n, err := c.AppendBlocks(ctx, results[i].ID, children)
			created += n
			if err != nil {
				return created, err
			}
		}
	}

	return created, nil
}

// ClearBlocks deletes the top-level children of a page or block and returns
// how many were removed. Nested blocks go with their parent.
func (c *Client) ClearBlocks(ctx context.Context, id string) (int, error) {
	var ids []string
	cursor := notionapi.Cursor("")
	for {
		resp, err := c.svc.Blocks.GetChildren(ctx, notionapi.BlockID(id), &notionapi.Pagination{
			StartCursor: cursor,
			PageSize:    c.pageSize,
		})
		if err != nil {
			return 0, fmt.Errorf("failed to list children of %s: %w", id, err)
		}
		page, err := fromAPI(resp.Results)
		if err != nil {
			return 0, err
		}
		for _, b := range page {
			if b.ID != "" {
				ids = append(ids, b.ID)
			}
		}
		if !resp.HasMore || resp.NextCursor == "" {
			break
		}
		cursor = notionapi.Cursor(resp.NextCursor)
	}

	for i, blockID := range ids {
		if _, err := c.svc.Blocks.Delete(ctx, notionapi.BlockID(blockID)); err != nil {
			return i, fmt.Errorf("failed to delete block %s: %w", blockID, err)
		}
	}
	c.log.Debug("cleared children", "parent", id, "count", len(ids))
	return len(ids), nil
}

// ReplaceBlocks clears a page and appends bs in place of its content
func (c *Client) ReplaceBlocks(ctx context.Context, id string, bs []blocks.Block) (int, error) {
	if _, err := c.ClearBlocks(ctx, id); err != nil {
		return 0, err
	}
	return c.AppendBlocks(ctx, id, bs)
}

func keepsChildren(t blocks.Type) bool {
	return t == blocks.TypeTable || t == blocks.TypeColumnList || t == blocks.TypeColumn
}

// withoutChildren returns a copy of b whose payload carries no children
func withoutChildren(b blocks.Block) blocks.Block {
	data, err := json.Marshal(b)
	if err != nil {
		return b
	}
	var clone blocks.Block
	if err := json.Unmarshal(data, &clone); err != nil {
		return b
	}
	clone.SetChildren(nil)
	clone.Children = nil
	return clone
}

func countBlocks(b blocks.Block) int {
	n := 1
	for _, child := range b.ChildBlocks() {
		n += countBlocks(child)
	}
	return n
}

// fromAPI converts API blocks through their JSON wire form
func fromAPI(in []notionapi.Block) ([]blocks.Block, error) {
	out := make([]blocks.Block, 0, len(in))
	for _, nb := range in {
		data, err := json.Marshal(nb)
		if err != nil {
			return nil, fmt.Errorf("failed to encode block: %w", err)
		}
		var b blocks.Block
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, fmt.Errorf("failed to decode block: %w", err)
		}
		out = append(out, b)
	}
	return out, nil
}

// toAPI converts creation payloads into API blocks
func toAPI(in []blocks.Block) ([]notionapi.Block, error) {
	data, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("failed to encode blocks: %w", err)
	}
	var out notionapi.Blocks
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to build request blocks: %w", err)
	}
	return out, nil
}

var trailingID = regexp.MustCompile(`([0-9a-fA-F]{32}|[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12})$`)

// ParsePageID accepts a raw ID or a notion.so URL and returns the dashed ID
func ParsePageID(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if id, ok := resolver.NormalizeID(ref); ok {
		return id, nil
	}

	s := ref
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimRight(s, "/")
	if m := trailingID.FindString(s); m != "" {
		if id, ok := resolver.NormalizeID(m); ok {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPageID, ref)
}
