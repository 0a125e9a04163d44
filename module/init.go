package module

import (
	"context"
	"net/http"
	"os"

	gconfig "github.com/gigapi/gigapi-config/config"
	"github.com/gigapi/gigapi/v2/modules"
	"github.com/spf13/afero"

	"github.com/gigapi/gigapi-metastore/config"
	"github.com/gigapi/gigapi-metastore/core"
	"github.com/gigapi/gigapi-metastore/server"
)

var srv *server.Server

func WithNoError(hndl func(w http.ResponseWriter, r *http.Request),
) func(w http.ResponseWriter, r *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		hndl(w, r)
		return nil
	}
}

// Init registers the catalog routes when gigapi serves reads.
// The metastore layout is read from METASTORE_CONFIG.
func Init(api modules.Api) {
	if gconfig.Config.Gigapi.Mode != "readonly" && gconfig.Config.Gigapi.Mode != "aio" {
		return
	}
	if err := config.InitConfig(os.Getenv("METASTORE_CONFIG")); err != nil {
		panic(err)
	}
	ctx := core.WithDefaultLogger(context.Background(), "module")
	var err error
	srv, err = server.FromConfig(ctx, config.Config, afero.NewOsFs())
	if err != nil {
		panic(err)
	}
	for _, route := range srv.Routes() {
		api.RegisterRoute(&modules.Route{
			Path:    route.Path,
			Methods: route.Methods,
			Handler: WithNoError(route.Handler),
		})
	}
	core.Infof(ctx, "metastore %s registered %d routes", srv.Lake.Metastore.Name(), len(srv.Routes()))
}

func Close() {
	if srv != nil {
		srv.Close()
	}
}
