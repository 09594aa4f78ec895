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

// Kind names one listable resource of the console.
type Kind string

const (
	KindServers      Kind = "servers"
	KindServices     Kind = "services"
	KindCredentials  Kind = "credentials"
	KindDomains      Kind = "domains"
	KindGroups       Kind = "groups"
	KindTags         Kind = "tags"
	KindTasks        Kind = "tasks"
	KindSprints      Kind = "sprints"
	KindReleaseNotes Kind = "releaseNotes"
)

func (k Kind) IsValid() bool {
	switch k {
	case KindServers, KindServices, KindCredentials, KindDomains, KindGroups,
		KindTags, KindTasks, KindSprints, KindReleaseNotes:
		return true
	}
	return false
}

func AllKinds() []Kind {
	return []Kind{
		KindServers, KindServices, KindCredentials, KindDomains, KindGroups,
		KindTags, KindTasks, KindSprints, KindReleaseNotes,
	}
}
