// Package server exposes the HTTP and WebSocket surface.
//
// REST routes cover votes, acceptance, notifications, and chat history; the
// /ws endpoint upgrades to a hub session and speaks the event protocol
// (joinGroup, sendPrivateMessage, sendGroupMessage, ...). All API routes
// require a JWT; the WebSocket accepts it via query parameter since browsers
// cannot set headers on upgrade requests.
package server
