package lawapi

import (
	"encoding/xml"
	"strconv"
	"strings"
)

// The terminology service names XML elements inconsistently across targets
// and releases (조번호 vs 조문번호, 검색결과개수 vs totalCnt).  Instead of one
// struct per response shape, responses are decoded into a generic element
// tree and fields are looked up through alias lists with a normalized
// substring fallback.

type xmlNode struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Content  string     `xml:",chardata"`
	Children []xmlNode  `xml:",any"`
}

func parseXML(data []byte) (*xmlNode, error) {
	var root xmlNode
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	return &root, nil
}

// normTag strips all whitespace so tag aliases compare loosely.
func normTag(tag string) string {
	return strings.Join(strings.Fields(tag), "")
}

func (n *xmlNode) attr(name string) string {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return strings.TrimSpace(a.Value)
		}
	}
	return ""
}

// findText returns the text of the first child whose tag equals one of the
// candidates, falling back to normalized-containment matching.  Exact
// matches take priority over fuzzy ones regardless of child order.
func (n *xmlNode) findText(candidates ...string) string {
	for _, cand := range candidates {
		if cand == "" {
			continue
		}
		for i := range n.Children {
			if n.Children[i].XMLName.Local == cand {
				if text := strings.TrimSpace(n.Children[i].Content); text != "" {
					return text
				}
			}
		}
	}

	var norm []string
	for _, cand := range candidates {
		if cand != "" {
			norm = append(norm, normTag(cand))
		}
	}
	for i := range n.Children {
		tag := normTag(n.Children[i].XMLName.Local)
		for _, cand := range norm {
			if strings.Contains(tag, cand) {
				return strings.TrimSpace(n.Children[i].Content)
			}
		}
	}
	return ""
}

// childrenContaining returns every child whose normalized tag contains key.
func (n *xmlNode) childrenContaining(keys ...string) []*xmlNode {
	var out []*xmlNode
	for i := range n.Children {
		tag := normTag(n.Children[i].XMLName.Local)
		for _, key := range keys {
			if strings.Contains(tag, key) {
				out = append(out, &n.Children[i])
				break
			}
		}
	}
	return out
}

// firstChildContaining returns the first child whose normalized tag contains
// key, or nil.
func (n *xmlNode) firstChildContaining(key string) *xmlNode {
	for i := range n.Children {
		if strings.Contains(normTag(n.Children[i].XMLName.Local), key) {
			return &n.Children[i]
		}
	}
	return nil
}

func intOrZero(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return v
}

// totalCountAliases are tried in order before the generic "total" fallback.
var totalCountAliases = []string{"검색결과개수", "검색결과수", "전체건수", "totalCnt", "count"}

// pickTotalCount extracts the result count from a search response.  Unknown
// shapes yield zero rather than an error: the count only steers paging.
func pickTotalCount(root *xmlNode) int {
	for _, alias := range totalCountAliases {
		for i := range root.Children {
			if root.Children[i].XMLName.Local == alias {
				if text := strings.TrimSpace(root.Children[i].Content); text != "" {
					return intOrZero(text)
				}
			}
		}
	}
	for i := range root.Children {
		if strings.Contains(strings.ToLower(normTag(root.Children[i].XMLName.Local)), "total") {
			return intOrZero(root.Children[i].Content)
		}
	}
	return 0
}
