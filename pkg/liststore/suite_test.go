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

package liststore

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/opsdeck/console/utils/logger"
)

var workdir string

func TestListStore(t *testing.T) {
	RegisterFailHandler(Fail)

	logger.InitLogger()
	defer logger.Sync()

	var err error
	workdir, err = os.MkdirTemp(os.TempDir(), "ut-console-liststore-")
	Expect(err).Should(BeNil())
	t.Logf("unit test workdir on: %s", workdir)

	RunSpecs(t, "ListStore Suite")
}

func buildNewStore(dbName string) *Store {
	store, err := NewStore(filepath.Join(workdir, dbName))
	Expect(err).Should(BeNil())
	return store
}
