// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package seed loads a YAML file of settings, programs, candidates,
// admins and pre-registered voters and applies it to the store.
package seed
