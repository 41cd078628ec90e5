// Package admin is a thin client for the storefront's administrative API.
//
// A [Client] attaches the owner credential from a [HeaderSource] (normally a
// *goOwner.Facade) to every call, stamps an X-Request-ID and decodes the backend's
// {"detail": ...} error payloads. A 401 answer wraps [ErrUnauthorized] so the caller can
// log the owner out.
//
// Orders, coupons, vendors and settings have typed helpers. The remaining screens
// (products, inventory, analytics and so on) go through [Client.List] and [Client.Get]
// and come back as untyped [Record] values.
package admin
