// Package proxy synthesizes proxy type descriptors for repository
// interfaces. Each descriptor carries the source method signatures, with
// parameter names preserved, tagged with a versioned command name
// (method name plus a global suffix). Descriptors are published once into a
// Registry that dispatch layers read without locking.
//
// A typical startup:
//
//	reg, err := proxy.Init(decls, proxy.DefaultVersionSuffix)
//	if err != nil {
//		log.Fatal(err) // no repository is usable without a complete registry
//	}
//	desc, ok := reg.Lookup("BeerRepository_Proxy")
package proxy
