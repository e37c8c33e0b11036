package warehouse

import (
	"net/url"
	"strconv"
)

// CompanyFilters narrows company queries. Zero fields are omitted from the
// request, the warehouse applies no filter for them.
type CompanyFilters struct {
	Keyword   string
	Country   string
	TechStack string
	MinJobs   int
	SortBy    string
	Relevant  string
	Status    string
}

func (f CompanyFilters) encode(limit int) url.Values {
	query := url.Values{}

	setNonEmpty(query, "keyword", f.Keyword)
	setNonEmpty(query, "country", f.Country)
	setNonEmpty(query, "tech_stack", f.TechStack)
	setNonEmpty(query, "sort_by", f.SortBy)
	setNonEmpty(query, "relevant", f.Relevant)
	setNonEmpty(query, "status", f.Status)

	if f.MinJobs > 0 {
		query.Set("min_jobs", strconv.Itoa(f.MinJobs))
	}

	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	return query
}

// JobFilters narrows job queries the same way.
type JobFilters struct {
	Source         string
	Country        string
	CompanyType    string
	SolutionDomain string
	TechStack      string
	Keyword        string
	PostedWithin   string
	SortBy         string
}

func (f JobFilters) encode(limit int) url.Values {
	query := url.Values{}

	setNonEmpty(query, "source", f.Source)
	setNonEmpty(query, "country", f.Country)
	setNonEmpty(query, "company_type", f.CompanyType)
	setNonEmpty(query, "solution_domain", f.SolutionDomain)
	setNonEmpty(query, "tech_stack", f.TechStack)
	setNonEmpty(query, "keyword", f.Keyword)
	setNonEmpty(query, "posted_within", f.PostedWithin)
	setNonEmpty(query, "sort_by", f.SortBy)

	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	return query
}

func setNonEmpty(query url.Values, key, value string) {
	if value != "" {
		query.Set(key, value)
	}
}
