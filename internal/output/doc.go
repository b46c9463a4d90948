// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package output writes count results for the command line. The default
// format is NDJSON, one JSON object per line, so results from several
// invocations can be appended to one file and streamed into other tools.
// The text format prints the bare number for shell pipelines.
//
// Example usage:
//
//	w, err := output.Open("counts.ndjson", output.FormatNDJSON)
//	if err != nil {
//	    return err
//	}
//	defer w.Close()
//
//	if err := w.Write(output.NewCountRecord(ref, "metadata", 225, time.Now())); err != nil {
//	    return err
//	}
package output
