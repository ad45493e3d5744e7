// Package api serves the planner and the operator engine over HTTP.
package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/tiler/internal/engine"
	"github.com/samcharles93/tiler/internal/logger"
	"github.com/samcharles93/tiler/internal/ops"
	"github.com/samcharles93/tiler/internal/platform"
	"github.com/samcharles93/tiler/internal/tiling"
	"github.com/samcharles93/tiler/internal/version"
	"github.com/samcharles93/tiler/pkg/planblob"
)

// Options configures a Server. Zero fields take defaults: the built-in
// platform registry, the "host" profile and the default planner config.
type Options struct {
	Store           *PlanStore
	Platforms       *platform.Registry
	DefaultPlatform string
	Config          tiling.Config
	Log             logger.Logger
}

type Server struct {
	store     *PlanStore
	platforms *platform.Registry
	platform  string
	cfg       tiling.Config
	log       logger.Logger
	clock     func() time.Time
}

func NewServer(opts Options) *Server {
	if opts.Store == nil {
		opts.Store = NewPlanStore()
	}
	if opts.Platforms == nil {
		opts.Platforms = platform.NewRegistry()
	}
	if opts.DefaultPlatform == "" {
		opts.DefaultPlatform = "host"
	}
	if opts.Config == (tiling.Config{}) {
		opts.Config = tiling.DefaultConfig()
	}
	return &Server{
		store:     opts.Store,
		platforms: opts.Platforms,
		platform:  opts.DefaultPlatform,
		cfg:       opts.Config,
		log:       logger.OrDiscard(opts.Log),
		clock:     time.Now,
	}
}

func (s *Server) Register(e *echo.Echo) {
	// Plans
	e.POST("/v1/plans", s.handleCreatePlan)
	e.GET("/v1/plans", s.handleListPlans)
	e.GET("/v1/plans/:id", s.handleGetPlan)
	e.DELETE("/v1/plans/:id", s.handleDeletePlan)
	e.GET("/v1/plans/:id/blob", s.handlePlanBlob)

	// Operators and platforms
	e.GET("/v1/ops", s.handleListOps)
	e.POST("/v1/ops/:name/invoke", s.handleInvoke)
	e.GET("/v1/platforms", s.handleListPlatforms)
	e.GET("/v1/version", s.handleVersion)
}

func (s *Server) resolveTarget(t Target) (platform.Info, error) {
	name := strings.TrimSpace(t.Platform)
	if name == "" {
		name = s.platform
	}
	info, err := s.platforms.Lookup(name)
	if err != nil {
		return platform.Info{}, err
	}
	return info.Override(t.Units, t.BufferBytes), nil
}

func (s *Server) engine(plat platform.Info) *engine.Engine {
	return engine.New(plat, s.cfg, s.log)
}

func (s *Server) handleCreatePlan(c *echo.Context) error {
	req, err := decodeJSON[PlanRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	if (req.Op == "") == (req.Request == nil) {
		return writeBadRequest(c, "exactly one of op or request is required")
	}
	plat, err := s.resolveTarget(req.Target)
	if err != nil {
		return writeDomainError(c, err)
	}

	rec := &PlanRecord{
		ID:        newPlanID(),
		Object:    "plan",
		CreatedAt: s.clock().Unix(),
		Op:        req.Op,
		Platform:  plat,
	}
	eng := s.engine(plat)
	if req.Request != nil {
		raw := *req.Request
		if raw.Units == 0 {
			raw.Units = plat.AvailableUnits()
		}
		if raw.BufferBytes == 0 {
			raw.BufferBytes = plat.BufferCapacityBytes()
		}
		rec.Plan, err = eng.Planner.Plan(raw)
	} else {
		inputs, derr := decodeTensors(req.Inputs)
		if derr != nil {
			return writeDomainError(c, derr)
		}
		var sig *ops.Signature
		rec.Plan, sig, err = eng.PlanOnly(engine.Call{Op: req.Op, Inputs: inputs, Attrs: req.Attrs})
		if sig != nil {
			rec.Signature = signatureInfo(sig)
		}
	}
	if err != nil {
		return writeDomainError(c, err)
	}

	s.store.Save(rec)
	s.log.Info("plan created",
		"id", rec.ID,
		"op", rec.Op,
		"platform", plat.Name,
		"units", rec.Plan.UnitCount,
		"tile", rec.Plan.TileElements,
	)
	return writeJSON(c, http.StatusOK, rec)
}

func (s *Server) handleListPlans(c *echo.Context) error {
	return writeJSON(c, http.StatusOK, ListResponse[*PlanRecord]{Object: "list", Data: s.store.List()})
}

func (s *Server) handleGetPlan(c *echo.Context) error {
	rec, ok := s.store.Get(c.Param("id"))
	if !ok {
		return writeNotFound(c, "plan not found")
	}
	return writeJSON(c, http.StatusOK, rec)
}

func (s *Server) handleDeletePlan(c *echo.Context) error {
	id := c.Param("id")
	if !s.store.Delete(id) {
		return writeNotFound(c, "plan not found")
	}
	return writeJSON(c, http.StatusOK, DeletePlanResp{
		ID:      id,
		Object:  "plan",
		Deleted: true,
	})
}

func (s *Server) handlePlanBlob(c *echo.Context) error {
	rec, ok := s.store.Get(c.Param("id"))
	if !ok {
		return writeNotFound(c, "plan not found")
	}
	b, err := planblob.Encode(rec.Plan)
	if err != nil {
		return writeDomainError(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", rec.ID+".tpl"))
	return c.Blob(http.StatusOK, echo.MIMEOctetStream, b)
}

func (s *Server) handleListOps(c *echo.Context) error {
	all := ops.All()
	out := make([]OpInfo, 0, len(all))
	for _, spec := range all {
		out = append(out, OpInfo{
			Name:       spec.Name,
			Kind:       spec.Kind.String(),
			Arity:      spec.Arity,
			Doc:        spec.Doc,
			DTypes:     spec.DTypes,
			AllowEmpty: spec.AllowEmpty,
		})
	}
	return writeJSON(c, http.StatusOK, ListResponse[OpInfo]{Object: "list", Data: out})
}

func (s *Server) handleListPlatforms(c *echo.Context) error {
	return writeJSON(c, http.StatusOK, ListResponse[platform.Info]{Object: "list", Data: s.platforms.List()})
}

func (s *Server) handleInvoke(c *echo.Context) error {
	name := c.Param("name")
	req, err := decodeJSON[InvokeRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	plat, err := s.resolveTarget(req.Target)
	if err != nil {
		return writeDomainError(c, err)
	}
	inputs, err := decodeTensors(req.Inputs)
	if err != nil {
		return writeDomainError(c, err)
	}

	res, err := s.engine(plat).Invoke(c.Request().Context(), engine.Call{Op: name, Inputs: inputs, Attrs: req.Attrs})
	if err != nil {
		return writeDomainError(c, err)
	}

	resp := InvokeResponse{
		Object:    "invocation",
		Op:        name,
		Signature: signatureInfo(res.Signature),
		Outputs:   make([]Tensor, len(res.Outputs)),
		Plan:      res.Plan,
		Stats:     res.Stats,
		ElapsedNS: res.Elapsed.Nanoseconds(),
	}
	for i, out := range res.Outputs {
		resp.Outputs[i] = encodeTensor(out)
	}
	return writeJSON(c, http.StatusOK, resp)
}

func (s *Server) handleVersion(c *echo.Context) error {
	return writeJSON(c, http.StatusOK, version.Resolve())
}
