// Package linguaswap switches the user-interface language of an already-rendered
// HTML document without re-rendering it.
//
// A switch flows through four components:
//
//   - store: per-language translation trees addressed by dotted paths, with a
//     memo of resolved values.
//   - cache: a bounded cache (count, memory and TTL ceilings) used to memoize
//     per-switch work such as language snapshots.
//   - scheduler: runs registered update units in dependency/priority waves and
//     queues concurrent switch requests in arrival order.
//   - render: finds elements bound to changed keys and republishes their text
//     and whitelisted attributes in frame-sized batches.
//
// This package holds the vocabulary they share: values, snapshots, switch
// events, the error taxonomy and language helpers.
//
// Basic usage:
//
//	st := store.New(store.DirSource("./locales"))
//	if err := st.Initialize(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	doc, _ := render.ParseHTML(page)
//	r := render.New(doc, st)
//	r.Prime("zh")
//	st.OnReload(r.Invalidate)
//
//	s, _ := scheduler.New(scheduler.WithPreparer(st), scheduler.WithInitialLanguage("zh"))
//	defer s.Close()
//	s.Register(render.DocumentAttributesUnitID, render.DocumentAttributesUnit(doc))
//	s.Register(render.UnitID, r.Unit())
//
//	report, err := s.Switch(ctx, "en")
package linguaswap
