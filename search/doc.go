// Copyright 2025 RnD Map contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package search ranks organizations against free-text queries.
//
// The Scorer type implements a weighted lexical ranking that combines:
//   - Exact and per-token matches on organization names and short names
//   - OKOGU affiliation matches
//   - Project and IP record text matches, gated by the active search scope
//   - Keyword and research-domain fallbacks when record texts miss
//
// Every match contributes a fixed weight; organizations are ordered by total
// score with dataset order breaking ties. RankDetail applies a second,
// independent ordering to the records inside one organization, and
// Highlights picks the organizations worth emphasizing on the map.
package search
