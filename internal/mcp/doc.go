// Copyright (c) 2021-2026 Rustam Gilyazov and Contributors.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package mcp implements the Model Context Protocol (MCP) server for legal
// spend intelligence.  It exposes the aggregation manager through MCP tools
// (spend summaries, vendor performance, budget-vs-actual, transaction
// search) and resources (vendor directory, source status, category
// vocabulary, recent overview) that AI agents can call.
//
// The server is read-only with respect to the underlying data sources: it
// never writes to or modifies any of them.
//
// Transport: the server supports two transports selectable at runtime:
//   - stdio – standard MCP stdio transport (default); suitable for local
//     agent integration (e.g. Claude Desktop, VS Code Copilot).
//   - http  – Streamable HTTP transport; suitable for remote agents or when
//     multiple concurrent clients are needed.  The HTTP listener also serves
//     /healthz and /status for operational probing.
package mcp
