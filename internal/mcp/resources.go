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

package mcp

// In this file: MCP resource definitions and handler implementations.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpsrv "github.com/mark3labs/mcp-go/server"

	"github.com/rusq/legalspend"
)

// serverResource pairs a resource definition with its read handler.
type serverResource struct {
	resource mcplib.Resource
	handler  mcpsrv.ResourceHandlerFunc
}

// resources returns all MCP resources that this server exposes.
func (s *Server) resources() []serverResource {
	return []serverResource{
		{
			resource: mcplib.NewResource("legalspend://vendors", "Legal Vendors",
				mcplib.WithResourceDescription("All legal vendors known across the active data sources."),
				mcplib.WithMIMEType("application/json"),
			),
			handler: s.readVendors,
		},
		{
			resource: mcplib.NewResource("legalspend://sources", "Data Sources",
				mcplib.WithResourceDescription("Configured data sources and their live connection status."),
				mcplib.WithMIMEType("application/json"),
			),
			handler: s.readSources,
		},
		{
			resource: mcplib.NewResource("legalspend://categories", "Spend Categories",
				mcplib.WithResourceDescription("Expense categories, practice areas, departments and matter types present in the last year of spend data."),
				mcplib.WithMIMEType("application/json"),
			),
			handler: s.readCategories,
		},
		{
			resource: mcplib.NewResource("legalspend://overview/recent", "Recent Spend Overview",
				mcplib.WithResourceDescription("Overview of legal spend activity over the last 30 days."),
				mcplib.WithMIMEType("application/json"),
			),
			handler: s.readRecentOverview,
		},
	}
}

// jsonContents wraps v as a single JSON text resource content for uri.
func jsonContents(uri string, v any) ([]mcplib.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serialise %s: %w", uri, err)
	}
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) readVendors(ctx context.Context, req mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	vendors, err := s.manager.AllVendors(ctx)
	if err != nil {
		return nil, fmt.Errorf("read vendors: %w", err)
	}
	return jsonContents(req.Params.URI, vendorListResult{
		Vendors:     vendors,
		TotalCount:  len(vendors),
		DataSources: s.manager.ActiveSources(),
		LastUpdated: time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) readSources(ctx context.Context, req mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	statuses := s.manager.SourcesStatus(ctx)
	active := 0
	for _, st := range statuses {
		if st.Status == "active" {
			active++
		}
	}
	return jsonContents(req.Params.URI, sourceListResult{
		DataSources:     statuses,
		ActiveCount:     active,
		TotalConfigured: len(statuses),
		LastChecked:     time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) readCategories(ctx context.Context, req mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	cats, err := s.manager.SpendCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("read categories: %w", err)
	}
	return jsonContents(req.Params.URI, cats)
}

// recentOverviewResult is the JSON body of the recent overview resource.
type recentOverviewResult struct {
	Period   string              `json:"period"`
	Overview legalspend.Overview `json:"overview"`
}

func (s *Server) readRecentOverview(ctx context.Context, req mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -30)
	ov, err := s.manager.SpendOverview(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("read recent overview: %w", err)
	}
	return jsonContents(req.Params.URI, recentOverviewResult{
		Period:   fmt.Sprintf("Last 30 days (%s)", periodString(start, end)),
		Overview: ov,
	})
}
