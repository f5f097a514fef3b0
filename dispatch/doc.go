// Package dispatch routes calls on synthesized proxies to their versioned
// backend commands. A Proxy resolves a method by name and argument names,
// binds the arguments in declaration order, and hands the resulting Command
// to an Executor. BunExecutor runs commands against a Bun database, reading
// command text from a database.CommandSet or calling a stored routine of the
// same name.
//
//	reg, err := proxy.Init(decls, proxy.DefaultVersionSuffix)
//	if err != nil {
//		return err
//	}
//	beers, err := dispatch.For(reg, "BeerRepository", dispatch.NewBunExecutor(db, commands))
//	if err != nil {
//		return err
//	}
//	var out []Beer
//	err = beers.Invoke(ctx, "FindBeers", dispatch.Args{"name": "Orval"}, &out)
package dispatch
