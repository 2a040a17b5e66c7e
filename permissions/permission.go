package permissions

import (
	_ "embed"
	"encoding/json"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

//go:embed permissions.json
var permissionsData []byte

// Permission lists the roles allowed on one route pattern. An empty list lets
// any authenticated caller through; Skip drops authentication altogether.
type Permission struct {
	Permissions []string `json:"permissions"`
	Path        string   `json:"path"`
	Method      string   `json:"method"`
	Skip        bool     `json:"skip"`
}

type PermissionData struct {
	Endpoints []Permission `json:"endpoints"`
	Skip      bool         `json:"skip"`

	index map[string]Permission
	once  sync.Once
}

func routeKey(method, path string) string {
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}

	return strings.ToUpper(method) + " " + path
}

// FindPermissions looks a route pattern up, ignoring a trailing slash. Unknown
// routes get the zero Permission.
func (r *PermissionData) FindPermissions(path, method string) Permission {
	r.once.Do(r.buildIndex)

	return r.index[routeKey(method, path)]
}

func (r *PermissionData) buildIndex() {
	r.index = make(map[string]Permission, len(r.Endpoints))

	for _, endpoint := range r.Endpoints {
		key := routeKey(endpoint.Method, endpoint.Path)
		if _, ok := r.index[key]; ok {
			log.Warn().Str("route", key).Msg("Duplicate permission entry, keeping the first")

			continue
		}

		r.index[key] = endpoint
	}
}

func Get() *PermissionData {
	var permissions PermissionData

	err := json.Unmarshal(permissionsData, &permissions)
	if err != nil {
		log.Err(err).Msg("Failed to decode embedded permissions")

		return nil
	}

	permissions.once.Do(permissions.buildIndex)

	log.Info().Int("endpoints", len(permissions.Endpoints)).Msg("Successfully loaded embedded permissions")

	return &permissions
}
