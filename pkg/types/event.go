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

package types

import "time"

// ResourceEvent announces that some record of a resource kind changed.
// Consumers invalidate by Kind, RefID is informational.
type ResourceEvent struct {
	Id     string    `json:"id"`
	Type   string    `json:"type"`
	Source string    `json:"source"`
	Kind   Kind      `json:"kind"`
	RefID  string    `json:"ref_id,omitempty"`
	Time   time.Time `json:"time"`
}
