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

package apis

import (
	"encoding/json"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/hyponet/eventbus"

	"github.com/opsdeck/console/pkg/events"
	"github.com/opsdeck/console/pkg/types"
)

// StreamEvents is the push invalidation channel: every resource-changed
// event published on the bus goes out as one server-sent event.
func (s *Server) StreamEvents(gCtx *gin.Context) {
	ch := make(chan *types.ResourceEvent, 16)
	lid := eventbus.Subscribe(events.TopicAllResourceChanged, func(evt *types.ResourceEvent) {
		select {
		case ch <- evt:
		default:
			// slow consumer, drop rather than block the bus
		}
	})
	defer eventbus.Unsubscribe(lid)

	gCtx.Header("Content-Type", "text/event-stream")
	gCtx.Header("Cache-Control", "no-cache")
	gCtx.Header("Connection", "keep-alive")
	gCtx.Writer.Flush()

	clientGone := gCtx.Request.Context().Done()
	gCtx.Stream(func(w io.Writer) bool {
		select {
		case <-clientGone:
			return false
		case evt := <-ch:
			payload, err := json.Marshal(evt)
			if err != nil {
				return true
			}
			_, _ = w.Write([]byte("data: "))
			_, _ = w.Write(payload)
			_, _ = w.Write([]byte("\n\n"))
			return true
		}
	})
}
