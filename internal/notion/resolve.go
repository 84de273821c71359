package notion

import (
	"context"
	"strings"
	"sync"

	"github.com/gerunddev/notionbridge/internal/logger"
	"github.com/gerunddev/notionbridge/internal/richtext"
	"github.com/jomei/notionapi"
)

// Resolver looks mention IDs up through the API. Names are resolved by the
// fallback only, since the API has no lookup by title. Results, including
// misses, are cached for the resolver's lifetime.
type Resolver struct {
	ctx      context.Context
	svc      Services
	fallback richtext.Resolver
	log      *logger.Logger

	mu    sync.Mutex
	names map[string]string
}

// Resolver returns a mention resolver bound to ctx. fallback may be nil.
func (c *Client) Resolver(ctx context.Context, fallback richtext.Resolver) *Resolver {
	return &Resolver{
		ctx:      ctx,
		svc:      c.svc,
		fallback: fallback,
		log:      c.log,
		names:    make(map[string]string),
	}
}

func (r *Resolver) NameToID(kind richtext.MentionType, name string) (string, bool) {
	if r.fallback == nil {
		return "", false
	}
	id, ok := r.fallback.NameToID(kind, name)
	if !ok {
		r.log.ResolveFailed(string(kind), name)
	}
	return id, ok
}

func (r *Resolver) IDToName(kind richtext.MentionType, id string) (string, bool) {
	if r.fallback != nil {
		if name, ok := r.fallback.IDToName(kind, id); ok {
			return name, true
		}
	}

	key := string(kind) + ":" + id
	r.mu.Lock()
	name, cached := r.names[key]
	r.mu.Unlock()
	if cached {
		return name, name != ""
	}

	name = r.lookup(kind, id)
	if name == "" {
		r.log.ResolveFailed(string(kind), id)
	}

	r.mu.Lock()
	r.names[key] = name
	r.mu.Unlock()
	return name, name != ""
}

func (r *Resolver) lookup(kind richtext.MentionType, id string) string {
	switch kind {
	case richtext.MentionPage:
		if r.svc.Pages == nil {
			return ""
		}
		page, err := r.svc.Pages.Get(r.ctx, notionapi.PageID(id))
		if err != nil || page == nil {
			return ""
		}
		return PageTitle(page)
	case richtext.MentionDatabase:
		if r.svc.Databases == nil {
			return ""
		}
		db, err := r.svc.Databases.Get(r.ctx, notionapi.DatabaseID(id))
		if err != nil || db == nil {
			return ""
		}
		return plainText(db.Title)
	case richtext.MentionUser:
		if r.svc.Users == nil {
			return ""
		}
		user, err := r.svc.Users.Get(r.ctx, notionapi.UserID(id))
		if err != nil || user == nil {
			return ""
		}
		return strings.TrimSpace(user.Name)
	}
	return ""
}

// PageTitle returns the plain text of a page's title property
func PageTitle(page *notionapi.Page) string {
	for _, prop := range page.Properties {
		if p, ok := prop.(*notionapi.TitleProperty); ok {
			return plainText(p.Title)
		}
	}
	return ""
}

func plainText(rts []notionapi.RichText) string {
	var sb strings.Builder
	for _, rt := range rts {
		sb.WriteString(rt.PlainText)
	}
	return strings.TrimSpace(sb.String())
}
