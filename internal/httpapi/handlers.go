package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pradeepkk321/fhir-mapper/errs"
	"github.com/pradeepkk321/fhir-mapper/facade"
	"github.com/pradeepkk321/fhir-mapper/internal/bootstrap"
	"github.com/pradeepkk321/fhir-mapper/mapping"
)

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// transformRequest is the body of POST /transform.
type transformRequest struct {
	MappingID  string                 `json:"mappingId,omitempty"`
	SourceType string                 `json:"sourceType,omitempty"`
	Direction  mapping.Direction      `json:"direction"`
	Context    transformRequestCtx    `json:"context,omitempty"`
	Document   map[string]interface{} `json:"document"`
}

type transformRequestCtx struct {
	OrganizationID string                 `json:"organizationId,omitempty"`
	FacilityID     string                 `json:"facilityId,omitempty"`
	TenantID       string                 `json:"tenantId,omitempty"`
	Variables      map[string]interface{} `json:"variables,omitempty"`
	Settings       map[string]string      `json:"settings,omitempty"`
}

func (tc transformRequestCtx) toContext() *mapping.TransformationContext {
	ctx := mapping.NewContext()
	ctx.OrganizationID = tc.OrganizationID
	ctx.FacilityID = tc.FacilityID
	ctx.TenantID = tc.TenantID
	for k, v := range tc.Variables {
		ctx.Variables[k] = v
	}
	for k, v := range tc.Settings {
		ctx.Settings[k] = v
	}
	return ctx
}

func (s *Server) handleTransform(c echo.Context) error {
	var req transformRequest
	if err := c.Bind(&req); err != nil {
		return writeErr(c, errs.Wrap(errs.KindConfig, err))
	}
	if req.Direction != mapping.JSONToFHIR && req.Direction != mapping.FHIRToJSON {
		return writeErr(c, errs.New(errs.KindConfig, "direction must be JSON_TO_FHIR or FHIR_TO_JSON"))
	}

	ref := facade.MappingRef{ID: req.MappingID, SourceType: req.SourceType}
	result, err := s.facade.TransformObject(ref, req.Direction, req.Document, req.Context.toContext())
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// validateRequest optionally overrides the configured base path for
// POST /validate; an empty body revalidates and reloads the configured one.
type validateRequest struct {
	BasePath string `json:"basePath,omitempty"`
}

func (s *Server) handleValidate(c echo.Context) error {
	var req validateRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return writeErr(c, errs.Wrap(errs.KindConfig, err))
		}
	}
	basePath := req.BasePath
	if basePath == "" {
		basePath = s.cfg.BasePath
	}

	reg, result, err := bootstrap.LoadRegistry(s.loader, basePath, s.cfg.FHIRVersion, nextGeneration(s.facade), false)
	if err != nil {
		return writeErr(c, err)
	}
	if result != nil && result.OK() {
		s.facade.Reload(reg)
	}
	return c.JSON(http.StatusOK, result)
}

func nextGeneration(f *facade.Facade) int {
	reg := f.Registry()
	if reg == nil {
		return 1
	}
	return reg.Generation + 1
}

func (s *Server) handleListLookups(c echo.Context) error {
	reg := s.facade.Registry()
	tables := reg.LookupTables()
	out := make([]map[string]interface{}, 0, len(tables))
	for id, t := range tables {
		out = append(out, map[string]interface{}{
			"id":            id,
			"name":          t.Name,
			"sourceSystem":  t.SourceSystem,
			"targetSystem":  t.TargetSystem,
			"bidirectional": t.Bidirectional,
			"size":          len(t.Mappings),
		})
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleTranslate(c echo.Context) error {
	id := c.Param("id")
	code := c.QueryParam("code")
	direction := c.QueryParam("direction") // "forward" (default) or "reverse"
	if code == "" {
		return writeErr(c, errs.New(errs.KindConfig, "query parameter \"code\" is required"))
	}

	table := s.facade.Registry().GetLookupTable(id)
	if table == nil {
		return writeErr(c, errs.New(errs.KindConfig, "lookup table "+id+" not found"))
	}

	if direction == "reverse" {
		result, ok, err := table.LookupSource(code)
		if err != nil {
			return writeErr(c, err)
		}
		if !ok {
			return writeErr(c, errs.New(errs.KindLookupMiss, "no source code for target code "+code))
		}
		return c.JSON(http.StatusOK, map[string]string{"code": result})
	}

	result, ok := table.LookupTarget(code)
	if !ok {
		return writeErr(c, errs.New(errs.KindLookupMiss, "no target code for source code "+code))
	}
	return c.JSON(http.StatusOK, map[string]string{"code": result})
}
