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


// Package semantic talks to the remote semantic search service.
//
// The service indexes project abstracts with vector embeddings and answers
// free-text queries that the local lexical scorer cannot, for example
// paraphrased or cross-language queries. This package covers only the client
// side of that service: the request contract, response decoding, and the
// asynchronous lifecycle around one invocation.
//
// # Components
//
//   - Searcher: the interface one semantic query goes through
//   - Client: HTTP implementation of Searcher against the /ai-search endpoint
//   - Orchestrator: state machine (idle, loading, success, error) that owns
//     in-flight requests, the timeout, and the retained result list
//
// The semantic/mock sub-package provides a test double for Searcher so the
// orchestrator and session logic can be tested without a live service.
//
// # Usage
//
//	cfg := semantic.NewConfig(semantic.WithBaseURL("http://localhost:8000"))
//	client, err := semantic.NewClient(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	orch, err := semantic.NewOrchestrator(client)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer orch.Close()
//	orch.Invoke("восстановление лесов после пожаров")
//
// Failures never propagate as crashes: the orchestrator folds transport
// errors, bad statuses, and timeouts into an error state with an explicitly
// empty result list.
package semantic
