package xnat

// projectList is the response of GET /data/projects?format=json.
type projectList struct {
	ResultSet struct {
		Result []struct {
			ID   string `json:"ID"`
			Name string `json:"name"`
		} `json:"Result"`
	} `json:"ResultSet"`
}

// projectDetail is the response of GET /data/projects/{id}?format=json.
type projectDetail struct {
	Items []item `json:"items"`
}

type item struct {
	Meta       map[string]any `json:"meta,omitempty"`
	DataFields map[string]any `json:"data_fields"`
	Children   []child        `json:"children,omitempty"`
}

type child struct {
	Field string `json:"field"`
	Items []item `json:"items"`
}

// Child field names carrying investigators.
const (
	fieldPI            = "PI"
	fieldInvestigators = "investigators/investigator"
)

func (it item) str(key string) string {
	switch v := it.DataFields[key].(type) {
	case string:
		return v
	case float64:
		return formatNumber(v)
	default:
		return ""
	}
}

func (it item) children(field string) []item {
	for _, c := range it.Children {
		if c.Field == field {
			return c.Items
		}
	}
	return nil
}
