// Command metacalld is the reference embedder: a thin HTTP daemon that
// brings up a metacall.Runtime, loads whatever scripts its configuration
// points at, and exposes health and introspection endpoints — the
// minimal "someone actually links this" proof the façade package needs.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/gometacall/gometacall/internal/envconfig"
	"github.com/gometacall/gometacall/internal/logger"
	"github.com/gometacall/gometacall/metacall"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// This is a local FFI daemon, not a public-facing service behind
	// browser-enforced CORS; every caller that can reach the port already
	// has the same trust level as a direct function call.
	CheckOrigin: func(r *http.Request) bool { return true },
}

func main() {
	root := &cobra.Command{
		Use:   "metacalld",
		Short: "MetaCall runtime daemon",
		RunE:  run,
	}
	root.Flags().String("config", "", "path to a configuration document to load at startup")
	root.Flags().String("addr", "", "HTTP listen address (overrides METACALLD_ADDR)")

	if err := root.Execute(); err != nil {
		logger.GetLogger().Fatal().Err(err).Msg("metacalld exited")
	}
}

func run(cmd *cobra.Command, _ []string) error {
	log := logger.GetLogger()

	configPath, _ := cmd.Flags().GetString("config")
	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = envconfig.GetEnv("METACALLD_ADDR", ":9684")
	}

	var configs []string
	if configPath != "" {
		configs = append(configs, configPath)
	}

	rt, err := metacall.InitializeEx(configs)
	if err != nil {
		return err
	}
	defer rt.Destroy()

	if err := rt.ForkInitialize(); err != nil {
		log.Warn().Err(err).Msg("fork safety unavailable on this platform")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	registerRoutes(router, rt)

	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("metacalld listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("metacalld server error")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func registerRoutes(router *gin.Engine, rt *metacall.Runtime) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"initialized": rt.IsInitialized(""),
		})
	})

	router.GET("/inspect", func(c *gin.Context) {
		c.JSON(http.StatusOK, rt.Inspect())
	})

	router.POST("/call/:name", func(c *gin.Context) {
		ctx := rt.WithScope(c.Request.Context())
		defer rt.Errors().EndScope(ctx)

		var body struct {
			Arguments string `json:"arguments"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		fn, err := rt.Function(c.Param("name"))
		if err != nil || fn == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "function not found"})
			return
		}

		result, err := rt.CallFunctionSerialized(fn, body.Arguments)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"result": result.Stringify()})
	})

	router.GET("/await/:name", func(c *gin.Context) {
		awaitFunctionOverWebsocket(c, rt)
	})
}

// awaitFunctionOverWebsocket upgrades the request to a websocket,
// reads one JSON request frame, and pushes back a single JSON result
// frame once the call settles — a push-notification alternative to
// polling /call, for an embedder whose function may take long enough
// that a request/response round trip isn't the right shape.
func awaitFunctionOverWebsocket(c *gin.Context, rt *metacall.Runtime) {
	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx := rt.WithScope(c.Request.Context())
	defer rt.Errors().EndScope(ctx)

	fn, err := rt.Function(c.Param("name"))
	if err != nil || fn == nil {
		conn.WriteJSON(gin.H{"error": "function not found"})
		return
	}

	var body struct {
		Arguments string `json:"arguments"`
	}
	if err := conn.ReadJSON(&body); err != nil {
		conn.WriteJSON(gin.H{"error": err.Error()})
		return
	}

	result, err := rt.CallFunctionSerialized(fn, body.Arguments)
	if err != nil {
		conn.WriteJSON(gin.H{"error": err.Error()})
		return
	}
	conn.WriteJSON(gin.H{"result": result.Stringify()})
}
