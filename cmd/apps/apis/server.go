/*
 Copyright 2024 OpsDeck Authors.

 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

// Package apis runs the development console API: the fixed list
// contract plus an event stream, backed by the sqlite list store.
package apis

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/opsdeck/console/config"
	"github.com/opsdeck/console/pkg/liststore"
	"github.com/opsdeck/console/utils/logger"
)

const defaultHttpTimeout = time.Minute * 5

type Server struct {
	engine    *gin.Engine
	store     *liststore.Store
	apiConfig config.Api
	logger    *zap.SugaredLogger
}

func NewApiServer(store *liststore.Store, cfg config.Config) (*Server, error) {
	apiConfig := cfg.Api
	if apiConfig.Enable && apiConfig.Port == 0 {
		return nil, fmt.Errorf("http port not set")
	}
	if apiConfig.Enable && apiConfig.Host == "" {
		apiConfig.Host = "127.0.0.1"
	}

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	s := &Server{
		engine:    gin.New(),
		store:     store,
		apiConfig: apiConfig,
		logger:    logger.NewLogger("api"),
	}

	s.engine.Use(gin.Recovery())
	s.engine.GET("/_ping", s.Ping)
	s.engine.GET("/events", s.StreamEvents)

	v1 := s.engine.Group("/api/v1")
	{
		v1.POST("/:resource/list", s.ListResources)
		v1.GET("/:resource/filter-metadata", s.FilterMetadata)
		v1.POST("/:resource", s.CreateResource)
		v1.PUT("/:resource/:id", s.UpdateResource)
		v1.DELETE("/:resource/:id", s.DeleteResource)
	}

	if apiConfig.Metrics {
		s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
	if apiConfig.Pprof {
		pprof.Register(s.engine)
	}

	return s, nil
}

func (s *Server) Run(stopCh chan struct{}) {
	addr := fmt.Sprintf("%s:%d", s.apiConfig.Host, s.apiConfig.Port)
	s.logger.Infof("http server on %s", addr)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  defaultHttpTimeout,
		WriteTimeout: defaultHttpTimeout,
	}

	go func() {
		if err := httpServer.ListenAndServe(); err != nil {
			if err != http.ErrServerClosed {
				s.logger.Panicw("api server down", "err", err.Error())
			}
			s.logger.Infof("api server stopped")
		}
	}()

	<-stopCh
	shutdownCtx, canF := context.WithTimeout(context.TODO(), time.Second)
	defer canF()
	_ = httpServer.Shutdown(shutdownCtx)
}

// Handler exposes the router for in-process test servers.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Ping(gCtx *gin.Context) {
	gCtx.JSON(200, map[string]string{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}
