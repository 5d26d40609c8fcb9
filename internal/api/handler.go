// Package api exposes the source registry and store over HTTP.
package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/brogergvhs/srcforge/internal/providers"
	"github.com/brogergvhs/srcforge/internal/providers/custom"
	"github.com/brogergvhs/srcforge/internal/store"
	"github.com/gin-gonic/gin"
)

const maxConfigSize = 1 << 20

// Builder turns a stored config into a live source.
type Builder func(cfg custom.ScrapingConfig) providers.Source

type Handler struct {
	Registry *providers.Registry
	Store    *store.Store
	Build    Builder
}

func NewHandler(reg *providers.Registry, st *store.Store, build Builder) *Handler {
	return &Handler{Registry: reg, Store: st, Build: build}
}

type sourceInfo struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Lang      string `json:"lang"`
	BaseURL   string `json:"baseUrl,omitempty"`
	Novel     bool   `json:"novel"`
	Delegates *int64 `json:"basedOn,omitempty"`
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.list)          // GET /sources
	rg.POST("", h.create)       // POST /sources
	rg.GET("/:id", h.export)    // GET /sources/:id
	rg.PUT("/:id", h.update)    // PUT /sources/:id
	rg.DELETE("/:id", h.remove) // DELETE /sources/:id

	rg.GET("/:id/popular", h.popular)
	rg.GET("/:id/latest", h.latest)
	rg.GET("/:id/search", h.search)
	rg.GET("/:id/filters", h.filters)
	rg.GET("/:id/details", h.details)
	rg.GET("/:id/chapters", h.chapters)
	rg.GET("/:id/content", h.content)
	rg.GET("/:id/pages", h.pages)
	rg.POST("/:id/test", h.test)
}

func (h *Handler) list(c *gin.Context) {
	sources := h.Registry.List()

	items := make([]sourceInfo, 0, len(sources))
	for _, s := range sources {
		info := sourceInfo{ID: s.ID(), Name: s.Name(), Lang: s.Lang()}
		if cs, ok := s.(*custom.Source); ok {
			cfg := cs.Config()
			info.BaseURL = cfg.BaseURL
			info.Novel = cfg.IsNovelContent
			info.Delegates = cfg.BasedOnExternalSourceID
		}
		items = append(items, info)
	}

	c.JSON(http.StatusOK, gin.H{"total": len(items), "items": items})
}

func (h *Handler) create(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxConfigSize))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "read body failed"})
		return
	}

	cfg, err := h.Store.Import(c.Request.Context(), body)
	if err != nil {
		writeError(c, err)
		return
	}
	h.Registry.Register(h.Build(cfg))

	c.JSON(http.StatusCreated, cfg)
}

func (h *Handler) export(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	data, err := h.Store.Export(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

func (h *Handler) update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxConfigSize))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "read body failed"})
		return
	}

	cfg, err := custom.Import(body)
	if err != nil {
		writeError(c, err)
		return
	}
	if cfg.ID == 0 {
		cfg.ID = id
	}
	if cfg.ID != id {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id in body does not match path"})
		return
	}

	if err := h.Store.Update(c.Request.Context(), cfg); err != nil {
		writeError(c, err)
		return
	}
	h.Registry.Register(h.Build(cfg))

	c.JSON(http.StatusOK, cfg)
}

func (h *Handler) remove(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.Store.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	h.Registry.Remove(id)

	c.Status(http.StatusNoContent)
}

func (h *Handler) popular(c *gin.Context) {
	src, ok := h.source(c)
	if !ok {
		return
	}

	page, err := src.GetPopular(c.Request.Context(), parsePage(c))
	respond(c, page, err)
}

func (h *Handler) latest(c *gin.Context) {
	src, ok := h.source(c)
	if !ok {
		return
	}

	page, err := src.GetLatest(c.Request.Context(), parsePage(c))
	respond(c, page, err)
}

func (h *Handler) search(c *gin.Context) {
	src, ok := h.source(c)
	if !ok {
		return
	}

	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}

	page, err := src.Search(c.Request.Context(), parsePage(c), q, nil)
	respond(c, page, err)
}

func (h *Handler) filters(c *gin.Context) {
	src, ok := h.source(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, src.GetFilters())
}

func (h *Handler) details(c *gin.Context) {
	src, ok := h.source(c)
	if !ok {
		return
	}
	u, ok := requireURL(c)
	if !ok {
		return
	}

	m, err := src.GetDetails(c.Request.Context(), providers.Manga{URL: u})
	respond(c, m, err)
}

func (h *Handler) chapters(c *gin.Context) {
	src, ok := h.source(c)
	if !ok {
		return
	}
	u, ok := requireURL(c)
	if !ok {
		return
	}

	list, err := src.GetChapterList(c.Request.Context(), providers.Manga{URL: u})
	respond(c, list, err)
}

func (h *Handler) content(c *gin.Context) {
	src, ok := h.source(c)
	if !ok {
		return
	}
	cs, ok := src.(providers.ContentSource)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "source does not provide chapter text"})
		return
	}
	u, ok := requireURL(c)
	if !ok {
		return
	}

	html, err := cs.FetchContent(c.Request.Context(), providers.Chapter{URL: u})
	respond(c, gin.H{"url": u, "content": html}, err)
}

func (h *Handler) pages(c *gin.Context) {
	cs, ok := h.customSource(c)
	if !ok {
		return
	}
	u, ok := requireURL(c)
	if !ok {
		return
	}

	pages, err := cs.GetPageList(c.Request.Context(), providers.Chapter{URL: u})
	respond(c, pages, err)
}

func (h *Handler) test(c *gin.Context) {
	cs, ok := h.customSource(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, custom.RunTest(c.Request.Context(), cs))
}

func (h *Handler) source(c *gin.Context) (providers.Source, bool) {
	id, ok := parseID(c)
	if !ok {
		return nil, false
	}

	src, found := h.Registry.Get(id)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "source not found"})
		return nil, false
	}

	return src, true
}

func (h *Handler) customSource(c *gin.Context) (*custom.Source, bool) {
	src, ok := h.source(c)
	if !ok {
		return nil, false
	}

	cs, ok := src.(*custom.Source)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "not a custom source"})
		return nil, false
	}

	return cs, true
}

func respond(c *gin.Context, v any, err error) {
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, v)
}

func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, custom.ErrInvalidConfig):
		status = http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrExists):
		status = http.StatusConflict
	case errors.Is(err, custom.ErrFetch):
		status = http.StatusBadGateway
	}

	_ = c.Error(err)
	c.JSON(status, gin.H{"error": err.Error()})
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid source id"})
		return 0, false
	}

	return id, true
}

func requireURL(c *gin.Context) (string, bool) {
	u := strings.TrimSpace(c.Query("url"))
	if u == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return "", false
	}

	return u, true
}

func parsePage(c *gin.Context) int {
	n := parseInt(c.Query("page"), 1)
	if n < 1 {
		return 1
	}

	return n
}

func parseInt(s string, def int) int {
	if strings.TrimSpace(s) == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
