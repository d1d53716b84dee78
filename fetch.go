// Package fetch is an asynchronous HTTP/1.1 client for JSON-speaking APIs. A request is
// built fluently, sent without blocking the caller and yields a Future, resolved with a
// completely received Response or an *Error:
//
//	resp, err := fetch.Get("https://api.example.com/items").
//		Param("page", "2").
//		Header("Accept", "application/json").
//		Send(ctx, transport.NewNet()).
//		Wait(ctx)
//
// Every exchange uses a connection of its own, closed once the exchange is over.
package fetch
