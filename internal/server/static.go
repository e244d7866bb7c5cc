package server

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// mountStatic serves the compiled frontend from the configured directory.
// It reports whether index.html was found and now owns "/" and unknown paths.
func (s *Server) mountStatic() bool {
	dir := s.opts.StaticDir
	if dir == "" {
		s.logger.Info("static directory not configured; API only mode")
		return false
	}

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		s.logger.Warn("static directory missing", "path", dir, "error", err)
		return false
	}

	assetsDir := filepath.Join(dir, "assets")
	if _, err := os.Stat(assetsDir); err == nil {
		s.engine.StaticFS("/assets", gin.Dir(assetsDir, false))
	}
	favicon := filepath.Join(dir, "favicon.ico")
	if _, err := os.Stat(favicon); err == nil {
		s.engine.StaticFile("/favicon.ico", favicon)
	}

	indexPath := filepath.Join(dir, "index.html")
	if _, err := os.Stat(indexPath); err != nil {
		s.logger.Warn("index.html not found", "path", indexPath, "error", err)
		return false
	}

	s.engine.GET("/", func(c *gin.Context) {
		c.File(indexPath)
	})
	s.engine.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			s.handleNotFound(c)
			return
		}
		c.File(indexPath)
	})
	return true
}
