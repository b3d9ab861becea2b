// Package gateway implements the ngio.Core contract over the HTTP gateway
// protocol: every call is a JSON POST carrying the app id, an optional session
// id, and a list of components to execute. The gateway answers with one tagged
// record per component, either as a single object or as an array; this package
// normalizes both shapes into []*ngio.CallResult before handing them to the
// session engine.
//
// The client never retries and never interprets component-level failures; a
// returned error strictly means the request produced no gateway-level
// response. Rate limiting, retry policy, and status interpretation belong to
// the session engine.
package gateway
