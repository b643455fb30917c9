/*
Package sampler combines per-domain sources into records.

A Composite reads every source at the same index:

	c, _ := sampler.New(map[domain.DomainDesc]ports.Source{
		domain.VisualDomain:     images,
		domain.AttributesDomain: attrs,
	})
	rec, _ := c.Get(0) // rec["v"], rec["attr"]

Restrict derives a Composite over a subset of domains and an explicit
index list, which is how aligned groups are served.
*/
package sampler
