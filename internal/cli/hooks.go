package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Dima09182/depviz/pkg/observability"
)

// debugHooks logs every traversal, cache and HTTP event at debug level.
// Installed under --verbose.
type debugHooks struct {
	logger *log.Logger
}

func (h *debugHooks) OnBuildStart(_ context.Context, source, root string, maxDepth int) {
	h.logger.Debug("traversal started", "source", source, "root", root, "max_depth", maxDepth)
}

func (h *debugHooks) OnBuildComplete(_ context.Context, source, root string, nodeCount int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("traversal aborted", "root", root, "nodes", nodeCount, "duration", d, "err", err)
		return
	}
	h.logger.Debug("traversal finished", "root", root, "nodes", nodeCount, "duration", d)
}

func (h *debugHooks) OnLevel(_ context.Context, depth, width int) {
	h.logger.Debug("level", "depth", depth, "packages", width)
}

func (h *debugHooks) OnNodeStart(_ context.Context, pkg string, depth int) {
	h.logger.Debug("reading package", "package", pkg, "depth", depth)
}

func (h *debugHooks) OnNodeComplete(_ context.Context, pkg string, depth, depCount int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("package failed", "package", pkg, "depth", depth, "duration", d, "err", err)
		return
	}
	h.logger.Debug("package read", "package", pkg, "depth", depth, "deps", depCount, "duration", d)
}

func (h *debugHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *debugHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *debugHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *debugHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h *debugHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http response", "method", method, "host", host, "path", path, "status", status, "duration", d)
}

func (h *debugHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("http error", "method", method, "host", host, "path", path, "err", err)
}

var (
	_ observability.TraversalHooks = (*debugHooks)(nil)
	_ observability.CacheHooks     = (*debugHooks)(nil)
	_ observability.HTTPHooks      = (*debugHooks)(nil)
)
