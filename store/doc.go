// Copyright 2025 Poiesic Systems
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


// Package store defines the record store abstraction: keyed storage of
// training examples that can also be read shard by shard, so a store is
// usable as a pipeline record source interchangeably with record files.
//
// Public constructors of implementation packages return the RecordStore
// interface to keep consumers decoupled from the backing database; see the
// badger subpackage for the BadgerDB implementation and an in-memory mode
// for tests.
package store
