package reconcile

import "sort"

// chainSites maps a source chain directly to its own verification site.
var chainSites = map[string]string{
	"shufersal": "shufersal.co.il",
	"rami-levy": "rami-levy.co.il",
	"victory":   "victoryonline.co.il",
	"mega":      "mega.co.il",
	"yohananof": "yochananof.co.il",
	"tiv-taam":  "tivtaam.co.il",
}

// chainAliases maps chains without a scrapable site of their own to the
// competitor site most likely to carry the same products.
var chainAliases = map[string]string{
	"osher-ad":      "rami-levy.co.il",
	"hazi-hinam":    "shufersal.co.il",
	"super-pharm":   "shufersal.co.il",
	"machsanei-ton": "victoryonline.co.il",
}

// Resolver maps a record's source chain to the verification site most
// likely to carry it. Resolution is deterministic for a given input.
type Resolver struct {
	defaultSite string
}

// NewResolver creates a Resolver with an optional configured default site.
func NewResolver(defaultSite string) *Resolver {
	return &Resolver{defaultSite: defaultSite}
}

// Resolve picks a site for the chain out of availableSites. Order: the
// chain's own site, then a known alias, then the configured default, then
// the lexicographically first available site. Returns ok=false only when
// no site is available at all.
func (r *Resolver) Resolve(chain string, availableSites map[string]bool) (string, bool) {
	if len(availableSites) == 0 {
		return "", false
	}

	if site, ok := chainSites[chain]; ok && availableSites[site] {
		return site, true
	}
	if site, ok := chainAliases[chain]; ok && availableSites[site] {
		return site, true
	}
	if r.defaultSite != "" && availableSites[r.defaultSite] {
		return r.defaultSite, true
	}

	// Any available site; sorted so the choice is stable across runs.
	sites := make([]string, 0, len(availableSites))
	for s := range availableSites {
		sites = append(sites, s)
	}
	sort.Strings(sites)
	return sites[0], true
}
