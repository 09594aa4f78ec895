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

package apps

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/opsdeck/console/cmd/apps/apis"
	"github.com/opsdeck/console/config"
	"github.com/opsdeck/console/pkg/apiclient"
	"github.com/opsdeck/console/pkg/console"
	"github.com/opsdeck/console/pkg/liststore"
	"github.com/opsdeck/console/pkg/querycache"
	"github.com/opsdeck/console/pkg/types"
	"github.com/opsdeck/console/utils"
	"github.com/opsdeck/console/utils/logger"
)

var Version = "dev"

func init() {
	RootCmd.AddCommand(serveCmd)
	RootCmd.AddCommand(seedCmd)
	RootCmd.AddCommand(queryCmd)
	RootCmd.AddCommand(versionCmd)

	serveCmd.Flags().StringVar(&config.FilePath, "config", "", "console config file")
	seedCmd.Flags().StringVar(&config.FilePath, "config", "", "console config file")
	seedCmd.Flags().IntVar(&seedSize, "size", 0, "records per resource kind")
	queryCmd.Flags().StringVar(&config.FilePath, "config", "", "console config file")
	queryCmd.Flags().StringVar(&queryLink, "link", "", "restore query state from a shared link")
	queryCmd.Flags().StringVar(&queryLocate, "locate", "", "page until the record with this id is loaded")
}

var RootCmd = &cobra.Command{
	Use:   "console",
	Short: "OpsDeck console server",
	Long:  `Query and cache backend for the ops console.`,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start console api service",
	Run: func(cmd *cobra.Command, args []string) {
		loader := config.NewConfigLoader()
		cfg, err := loader.GetConfig()
		if err != nil {
			panic(err)
		}

		if cfg.Debug {
			logger.SetDebug(cfg.Debug)
		}

		store, err := liststore.NewStore(cfg.Store.Path)
		if err != nil {
			panic(err)
		}

		if err = seedIfEmpty(store, cfg); err != nil {
			panic(err)
		}

		stop := utils.HandleTerminalSignal()
		run(store, cfg, stop)
	},
}

func run(store *liststore.Store, cfg config.Config, stopCh chan struct{}) {
	log := logger.NewLogger("console")
	log.Infow("starting", "version", Version)
	shutdown := make(chan struct{})
	go func() {
		<-stopCh
		log.Info("shutdown after 1s")
		time.Sleep(time.Second)
		close(shutdown)
	}()

	if cfg.Api.Enable {
		s, err := apis.NewApiServer(store, cfg)
		if err != nil {
			log.Panicw("init http server failed", "err", err.Error())
		}
		go s.Run(stopCh)
	}

	log.Info("started")
	<-shutdown
	log.Info("stopped")
}

// seedIfEmpty fills a fresh store with sample rows so the console has
// something to page through on first run.
func seedIfEmpty(store *liststore.Store, cfg config.Config) error {
	if cfg.Store.SeedSize <= 0 {
		return nil
	}
	total, err := store.Count(context.Background(), "")
	if err != nil {
		return err
	}
	if total > 0 {
		return nil
	}
	return store.Seed(context.Background(), cfg.Store.SeedSize)
}

var seedSize int

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the list store with sample records",
	Run: func(cmd *cobra.Command, args []string) {
		loader := config.NewConfigLoader()
		cfg, err := loader.GetConfig()
		if err != nil {
			panic(err)
		}

		store, err := liststore.NewStore(cfg.Store.Path)
		if err != nil {
			panic(err)
		}

		n := seedSize
		if n <= 0 {
			n = cfg.Store.SeedSize
		}
		if err = store.Seed(context.Background(), n); err != nil {
			panic(err)
		}
		fmt.Printf("seeded %d records per kind\n", n)
	},
}

var (
	queryLink   string
	queryLocate string
)

var queryCmd = &cobra.Command{
	Use:   "query <kind>",
	Short: "Run one list query against a console api",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		loader := config.NewConfigLoader()
		cfg, err := loader.GetConfig()
		if err != nil {
			panic(err)
		}

		kind := types.Kind(args[0])
		svc := querycache.New(querycache.WithIdleEntries(cfg.CacheEntries))
		defer svc.Close()

		session, err := console.NewSession(svc,
			apiclient.New(cfg.Client.Endpoint),
			kind,
			console.WithPageLimit(int64(cfg.Client.PageLimit)),
			console.WithSearchDelay(time.Duration(cfg.Client.DebounceMs)*time.Millisecond))
		if err != nil {
			panic(err)
		}
		defer session.Close()

		if queryLink != "" {
			if err = session.RestoreLink(queryLink); err != nil {
				panic(err)
			}
		}

		ctx, canF := context.WithTimeout(context.Background(), time.Minute)
		defer canF()

		handle := session.Handle()
		if queryLocate != "" {
			rec, err := handle.Locate(ctx, queryLocate)
			if err != nil {
				panic(err)
			}
			fmt.Printf("%s\t%v\n", rec.ID(), rec["name"])
			return
		}

		for {
			snap := handle.Snapshot()
			if snap.Err != nil {
				panic(snap.Err)
			}
			if !snap.IsLoading {
				for _, rec := range snap.Items {
					fmt.Printf("%s\t%v\n", rec.ID(), rec["name"])
				}
				return
			}
			select {
			case <-ctx.Done():
				panic(ctx.Err())
			case <-handle.Updates():
			}
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "View version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Version: %s\n", Version)
	},
}
