/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import "log/slog"

// Assistant describes the content-generation collaborator that produces
// element fragments. The editor never calls it; fragment inserts are tagged
// with it so their logs say where the JSON came from.
type Assistant struct {
	Endpoint string
	Model    string
	HasKey   bool
}

// Configured reports whether an endpoint and an API key are both present.
func (a Assistant) Configured() bool { return a.Endpoint != "" && a.HasKey }

// LogValue implements slog.LogValuer. The key itself is never logged.
func (a Assistant) LogValue() slog.Value {
	if a.Endpoint == "" && a.Model == "" {
		return slog.StringValue("none")
	}
	return slog.GroupValue(
		slog.String("endpoint", a.Endpoint),
		slog.String("model", a.Model),
		slog.Bool("key", a.HasKey),
	)
}

// Assistant returns the configured collaborator.
func (e *Editor) Assistant() Assistant { return e.opts.Assistant }
