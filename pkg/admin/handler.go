package admin

import (
	"github.com/gin-gonic/gin"

	"github.com/kart-io/rebind/pkg/errors"
	"github.com/kart-io/rebind/pkg/response"
)

// rebindAll triggers a full rebind pass over every tracked component.
// Individual component failures do not abort the pass; the aggregated
// error is returned alongside the component count.
func (s *Server) rebindAll(c *gin.Context) {
	names := s.rebinder.Names()
	err := s.rebinder.RebindAll()

	if err != nil {
		response.Write(c, errors.ErrRebindFailed.WithCause(err),
			gin.H{"components": len(names), "detail": err.Error()})
		return
	}
	response.Write(c, nil, gin.H{"components": len(names)})
}

// rebindOne triggers a rebind of a single component by name.
func (s *Server) rebindOne(c *gin.Context) {
	name := c.Param("name")

	if !s.rebinder.IsRegistered(name) {
		response.Write(c, errors.ErrComponentNotFound.WithMessagef("component %q is not tracked", name), nil)
		return
	}

	rebound, err := s.rebinder.Rebind(name)
	if err != nil {
		response.Write(c, errors.ErrRebindFailed.WithCause(err), gin.H{"component": name})
		return
	}
	response.Write(c, nil, gin.H{"component": name, "rebound": rebound})
}

// listComponents returns the names of all tracked components.
func (s *Server) listComponents(c *gin.Context) {
	names := s.rebinder.Names()
	response.Write(c, nil, gin.H{"components": names, "count": len(names)})
}

// health is the liveness probe.
func (s *Server) health(c *gin.Context) {
	response.Write(c, nil, gin.H{"status": "ok"})
}
