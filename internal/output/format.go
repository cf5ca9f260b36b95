package output

import (
	"fmt"
	"strings"
	"time"

	"diagcheck/internal/database"
	"diagcheck/internal/engine"

	"github.com/dustin/go-humanize"
)

// Section constants to avoid hardcoded strings
const (
	SectionCPU      = "cpu"
	SectionMemory   = "memory"
	SectionDisk     = "disk"
	SectionDatabase = "database"
)

// UI/view-model types (no printing here)
type Item struct {
	Key    string
	Label  string
	Value  float64
	Unit   string
	Status string
	Note   string
}

type Section struct {
	ID    string // cpu/memory/disk/database
	Title string
	Items []Item
}

// DashboardView is everything a renderer needs from one diagnosis.
type DashboardView struct {
	GeneratedAt     time.Time
	System          string
	Hostname        string
	OverallStatus   string
	StatusSummary   string
	Sections        []Section
	SlowQueries     []database.SlowQuery
	Alerts          []engine.Alert
	Recommendations []string
	TotalRAMGB      float64
	TotalDiskGB     float64
}

// BuildDashboard converts a diagnosis into UI-ready sections.
func BuildDashboard(d engine.Diagnosis) DashboardView {
	sec := map[string]*Section{
		SectionCPU:      {ID: SectionCPU, Title: "CPU"},
		SectionMemory:   {ID: SectionMemory, Title: "Memory"},
		SectionDisk:     {ID: SectionDisk, Title: "Disk"},
		SectionDatabase: {ID: SectionDatabase, Title: "Database"},
	}

	for _, r := range d.Checks {
		name := strings.ToLower(r.Name)

		it := Item{
			Key:    strings.ReplaceAll(name, " ", "_"),
			Label:  r.Name,
			Value:  r.Value,
			Unit:   unitFor(name),
			Status: string(r.Status),
		}
		if name == "db status" {
			it.Value = 0
			it.Note = string(d.DB.Status)
		}

		switch {
		case strings.Contains(name, "cpu"):
			sec[SectionCPU].Items = append(sec[SectionCPU].Items, it)
		case strings.Contains(name, "memory"), strings.Contains(name, "swap"):
			sec[SectionMemory].Items = append(sec[SectionMemory].Items, it)
		case strings.Contains(name, "disk"):
			sec[SectionDisk].Items = append(sec[SectionDisk].Items, it)
		case strings.HasPrefix(name, "db"), strings.Contains(name, "queries"):
			sec[SectionDatabase].Items = append(sec[SectionDatabase].Items, it)
		}
	}

	// ------------------------------------------------------------------------
	// Inject Informational Metrics (Missing from Health Checks)
	// ------------------------------------------------------------------------

	sec[SectionCPU].Items = append(sec[SectionCPU].Items,
		Item{Key: "cores", Label: "Cores", Value: float64(d.OS.CPUCores)},
	)
	sec[SectionMemory].Items = append(sec[SectionMemory].Items,
		Item{Key: "memory_used", Label: "Used", Value: d.OS.MemoryUsedGB, Unit: "GB"},
		Item{Key: "memory_total", Label: "Total", Value: d.OS.MemoryTotalGB, Unit: "GB"},
	)
	sec[SectionDisk].Items = append(sec[SectionDisk].Items,
		Item{Key: "disk_used", Label: "Used", Value: d.OS.DiskUsedGB, Unit: "GB"},
		Item{Key: "disk_total", Label: "Total", Value: d.OS.DiskTotalGB, Unit: "GB"},
	)

	if d.DB.Status == database.StatusConnected {
		sec[SectionDatabase].Items = append(sec[SectionDatabase].Items,
			Item{Key: "db_version", Label: "Version", Note: d.DB.Version},
			Item{Key: "db_uptime", Label: "Uptime", Note: FormatUptime(d.DB.UptimeSeconds)},
			Item{Key: "db_tables", Label: "Tables", Note: humanize.Comma(d.DB.TableCount)},
			Item{Key: "db_size", Label: "Size", Value: d.DB.SizeMB, Unit: "MB"},
		)
	}

	return DashboardView{
		GeneratedAt:   d.TakenAt,
		System:        d.OS.Host.String(),
		Hostname:      d.OS.Host.Hostname,
		OverallStatus: string(d.OverallStatus),
		StatusSummary: d.OverallStatus.Summary(),
		Sections: []Section{
			*sec[SectionCPU],
			*sec[SectionMemory],
			*sec[SectionDisk],
			*sec[SectionDatabase],
		},
		SlowQueries:     d.DB.SlowQueries,
		Alerts:          d.Alerts,
		Recommendations: d.Recommendations,
		TotalRAMGB:      d.OS.MemoryTotalGB,
		TotalDiskGB:     d.OS.DiskTotalGB,
	}
}

func unitFor(name string) string {
	switch {
	case strings.Contains(name, "latency"), strings.Contains(name, "response"):
		return "ms"
	case strings.HasSuffix(name, "usage"):
		return "%"
	default:
		return ""
	}
}

// FormatUptime renders seconds as "3d 4h 12m", or "45s" under a minute.
// Zero means no uptime was reported.
func FormatUptime(seconds int64) string {
	if seconds <= 0 {
		return "0m"
	}
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	d := time.Duration(seconds) * time.Second
	days := int64(d.Hours()) / 24
	hours := int64(d.Hours()) % 24
	minutes := int64(d.Minutes()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}

func (v DashboardView) SectionByID(id string) *Section {
	for i := range v.Sections {
		if v.Sections[i].ID == id {
			return &v.Sections[i]
		}
	}
	return nil
}

func (s Section) ItemByKey(key string) *Item {
	for i := range s.Items {
		if s.Items[i].Key == key {
			return &s.Items[i]
		}
	}
	return nil
}
