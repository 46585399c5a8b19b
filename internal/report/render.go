package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nvelasco/driftwatch/internal/verify"
)

// JSON renders a report as indented JSON. Same object as Markdown —
// the two never disagree on a number.
func JSON(r *AuditReport) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling audit report: %w", err)
	}
	return string(data), nil
}

// Markdown renders a report as a human-readable document.
func Markdown(r *AuditReport) string {
	var sb strings.Builder

	sb.WriteString("# Alignment Audit Report\n\n")
	fmt.Fprintf(&sb, "**Report ID:** `%s`\n", r.ID)
	fmt.Fprintf(&sb, "**Generated:** %s\n", r.GeneratedAt)
	if r.TruthVersion > 0 {
		fmt.Fprintf(&sb, "**Truth version:** v%d\n", r.TruthVersion)
	}
	if r.HealthStatus == healthUnknown {
		sb.WriteString("**Overall score:** unscored — no section carries a score yet\n\n")
	} else {
		fmt.Fprintf(&sb, "**Overall score:** %d/100 (%s)\n\n", r.OverallScore, r.HealthStatus)
	}

	if len(r.CriticalFindings) > 0 {
		sb.WriteString("## Critical Findings\n\n")
		for _, f := range r.CriticalFindings {
			fmt.Fprintf(&sb, "- ⛔ %s\n", f)
		}
		sb.WriteString("\n")
	}

	for _, s := range r.Sections {
		renderSection(&sb, s)
	}

	return sb.String()
}

func renderSection(sb *strings.Builder, s Section) {
	fmt.Fprintf(sb, "## %s\n\n", sectionTitle(s.Name))

	if !s.Available {
		fmt.Fprintf(sb, "_Section unavailable: %s_\n\n", s.Error)
		return
	}

	switch {
	case s.Backlog != nil:
		renderScoredSet(sb, s.Backlog)
	case s.Documents != nil:
		renderScoredSet(sb, s.Documents)
	case s.Decisions != nil:
		renderScoredSet(sb, s.Decisions)

	case s.Sprint != nil:
		sr := s.Sprint
		gate := "✅ open — sprint can proceed"
		if !sr.CanProceed {
			gate = "⛔ closed — at least one task is blocked"
		}
		fmt.Fprintf(sb, "**Gate:** %s (%d tasks, truth v%d)\n\n", gate, len(sr.Tasks), sr.TruthVersion)
		for _, t := range sr.Tasks {
			if t.Status != "blocked" {
				continue
			}
			fmt.Fprintf(sb, "- **%s**: %s\n", t.ID, t.Message)
		}
		sb.WriteString("\n")

	case s.Drift != nil:
		d := s.Drift
		fmt.Fprintf(sb, "**Monitor:** %s\n", d.State)
		if d.Latest != nil {
			fmt.Fprintf(sb, "**Latest drift:** %.1f%% (%s) at %s\n",
				d.Latest.DriftPercentage, d.Latest.Severity, d.Latest.Timestamp)
		} else {
			sb.WriteString("_No drift snapshots recorded yet._\n")
		}
		if d.Trend.Determined {
			direction := "decreasing"
			if d.Trend.Increasing {
				direction = "increasing"
			}
			fmt.Fprintf(sb, "**Trend:** %s at %.2f%%/tick over the last %d snapshots\n",
				direction, d.Trend.Rate, d.Trend.Window)
		} else {
			fmt.Fprintf(sb, "**Trend:** undetermined — fewer than %d snapshots recorded\n", d.Trend.Window)
		}
		sb.WriteString("\n")

	case s.Learnings != nil:
		ins := s.Learnings
		fmt.Fprintf(sb, "**Flagged results on record:** %d\n\n", ins.TotalFlagged)
		if len(ins.CommonViolations) > 0 {
			sb.WriteString("**Common violations:**\n")
			for _, v := range ins.CommonViolations {
				fmt.Fprintf(sb, "- (%d×) %s\n", v.Count, v.Pattern)
			}
			sb.WriteString("\n")
		}
		if len(ins.RiskFactors) > 0 {
			sb.WriteString("**Risk factors:**\n")
			for _, rf := range ins.RiskFactors {
				fmt.Fprintf(sb, "- %s: %s impact (%d flagged)\n", rf.Category, rf.Impact, rf.Count)
			}
			sb.WriteString("\n")
		}

	case s.Recommendations != nil:
		for i, rec := range s.Recommendations {
			fmt.Fprintf(sb, "%d. %s\n", i+1, rec)
		}
		sb.WriteString("\n")
	}
}

// renderScoredSet formats a verified item set: the backlog, document,
// and decision sections all carry one.
func renderScoredSet(sb *strings.Builder, br *verify.BacklogReport) {
	fmt.Fprintf(sb, "**Purity score:** %d/100 (truth v%d)\n\n", br.PurityScore, br.TruthVersion)
	fmt.Fprintf(sb, "| Status | Count |\n|---|---|\n")
	fmt.Fprintf(sb, "| allowed | %d |\n| warning | %d |\n| review | %d |\n| blocked | %d |\n\n",
		br.Aligned, br.Warnings, br.Reviews, br.Violations)
	for _, item := range br.Items {
		if item.Status == "allowed" {
			continue
		}
		fmt.Fprintf(sb, "- **%s** [%s, confidence %d]: %s\n", item.ID, item.Status, item.Confidence, item.Message)
	}
	sb.WriteString("\n")
}

func sectionTitle(name string) string {
	switch name {
	case SectionBacklog:
		return "Backlog Alignment"
	case SectionSprint:
		return "Sprint Readiness"
	case SectionDocuments:
		return "Document Alignment"
	case SectionDecisions:
		return "Decision Alignment"
	case SectionDrift:
		return "Drift History"
	case SectionLearnings:
		return "Learnings"
	case SectionRecommendations:
		return "Recommendations"
	default:
		return name
	}
}
