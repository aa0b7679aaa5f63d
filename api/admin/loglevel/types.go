// Copyright (c) 2025 The Bastion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package loglevel

// Request is the expected request body for the POST /admin/loglevel endpoint.
type Request struct {
	Level string `json:"level"`
}

// Response is the response body for the GET/POST /admin/loglevel endpoint.
type Response struct {
	CurrentLevel string `json:"currentLevel"`
}
