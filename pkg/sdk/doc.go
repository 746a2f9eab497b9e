// Package reachout provides a Go client for the connection strategy engine.
//
// Given a requester, a target and the requester's social graph, the engine
// returns the single best way to reach the target: a mutual connection, an
// engagement bridge, a company bridge, an intermediary, or cold outreach
// ranked by profile similarity. An optional semantic backend can upgrade cold
// recommendations.
//
// # Single target
//
//	client, _ := reachout.New(
//	    reachout.WithCompanyDirectory(directory),
//	    reachout.WithActivityStore(activities),
//	)
//	s, _ := client.FindConnectionStrategy(ctx, &me, &target, graph)
//	fmt.Println(s.Type, s.Confidence, s.NextSteps)
//
// # Many targets
//
//	res, _ := client.BatchDiscoverConnections(ctx, &me, targets, graph)
//	for _, s := range res.Strategies {
//	    fmt.Println(s.TargetID, s.Type, s.Confidence)
//	}
//
// # Semantic upgrade
//
//	client, _ := reachout.New(
//	    reachout.WithOpenAIEmbeddings(os.Getenv("OPENAI_API_KEY"), "", "text-embedding-3-small"),
//	    reachout.WithSemanticTimeout(3*time.Second),
//	)
package reachout
