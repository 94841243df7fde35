package enrich

import (
	"strings"

	"github.com/JakeFAU/lead-harvester/internal/lead"
)

type roleTitles struct {
	role   lead.DecisionMakerType
	titles []string
}

var decisionMakerTitles = []roleTitles{
	{lead.RoleExecutive, []string{
		"ceo", "chief executive officer", "president", "founder", "co-founder",
		"managing director", "executive director", "general manager",
	}},
	{lead.RoleMarketing, []string{
		"cmo", "chief marketing officer", "marketing director", "marketing manager",
		"head of marketing", "vp marketing", "marketing lead", "brand manager",
	}},
	{lead.RoleSales, []string{
		"cso", "chief sales officer", "sales director", "sales manager",
		"head of sales", "vp sales", "sales lead", "business development",
		"account executive", "sales representative",
	}},
	{lead.RoleTechnology, []string{
		"cto", "chief technology officer", "it director", "it manager",
		"head of it", "vp technology", "technical lead", "software engineer",
		"developer", "architect",
	}},
	{lead.RoleFinance, []string{
		"cfo", "chief financial officer", "finance director", "finance manager",
		"head of finance", "vp finance", "financial controller", "accountant",
	}},
	{lead.RoleOperations, []string{
		"coo", "chief operations officer", "operations director", "operations manager",
		"head of operations", "vp operations", "process manager", "quality manager",
	}},
	{lead.RoleHumanResources, []string{
		"chro", "chief human resources officer", "hr director", "hr manager",
		"head of hr", "vp hr", "talent acquisition", "recruiter",
	}},
}

// ClassifyTitle maps a job title to a decision-maker category by substring.
// Categories are tried in order and RoleOther is the fallback.
func ClassifyTitle(title string) lead.DecisionMakerType {
	title = strings.ToLower(title)
	for _, rt := range decisionMakerTitles {
		for _, t := range rt.titles {
			if strings.Contains(title, t) {
				return rt.role
			}
		}
	}
	return lead.RoleOther
}
