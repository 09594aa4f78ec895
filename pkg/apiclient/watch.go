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

package apiclient

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/hyponet/eventbus"
	"github.com/pkg/errors"

	"github.com/opsdeck/console/pkg/events"
	"github.com/opsdeck/console/pkg/types"
)

// Watch attaches to the server's event stream and republishes every
// resource-changed event on the local bus, where the query cache picks
// it up. It blocks until the stream ends or the context is cancelled;
// reconnecting is the caller's policy.
func (c *Client) Watch(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/events", nil)
	if err != nil {
		return errors.Wrap(err, "build watch request")
	}
	httpReq.Header.Set("Accept", "text/event-stream")

	// the stream is long-lived, bypass the request timeout
	cli := &http.Client{Transport: c.httpCli.Transport}
	resp, err := cli.Do(httpReq)
	if err != nil {
		return errors.Wrap(err, "open event stream")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("event stream: unexpected status %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		evt := &types.ResourceEvent{}
		if err = json.Unmarshal([]byte(payload), evt); err != nil {
			c.logger.Warnw("drop unparseable event", "err", err)
			continue
		}
		if !evt.Kind.IsValid() {
			continue
		}
		eventbus.Publish(events.ResourceChangedTopic(evt.Kind), evt)
	}
	if err = scanner.Err(); err != nil && ctx.Err() == nil {
		return errors.Wrap(err, "read event stream")
	}
	return nil
}
