package exprlang

import "github.com/pradeepkk321/fhir-mapper/mapping"

// ctxBinding wraps a TransformationContext so it can be threaded through the
// evaluator's generic value space as the value bound to the name "ctx".
// Dot-access on a ctxBinding resolves organizationId/facilityId/tenantId to
// their string fields and "settings" to the settings map; any other name
// falls back to Variables[name] ( $ctx substitution, generalized
// here to plain member access since "ctx" is just another bound variable).
type ctxBinding struct {
	tc *mapping.TransformationContext
}

// settingsBinding wraps the settings map so ctx.settings['key'] can be
// resolved through ndIndex with a string key.
type settingsBinding struct {
	settings map[string]string
}

func (c *ctxBinding) dot(name string) interface{} {
	if c.tc == nil {
		return nil
	}
	switch name {
	case "organizationId":
		return nonEmptyOrNil(c.tc.OrganizationID)
	case "facilityId":
		return nonEmptyOrNil(c.tc.FacilityID)
	case "tenantId":
		return nonEmptyOrNil(c.tc.TenantID)
	case "settings":
		return &settingsBinding{settings: c.tc.Settings}
	default:
		if v, ok := c.tc.Variables[name]; ok {
			return v
		}
		return nil
	}
}

func nonEmptyOrNil(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func (s *settingsBinding) index(key string) interface{} {
	if s == nil || s.settings == nil {
		return nil
	}
	if v, ok := s.settings[key]; ok {
		return v
	}
	return nil
}
