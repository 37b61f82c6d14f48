// Package sse provides Server-Sent Events client management for real-time communication.
package sse

import (
	"sync"
)

// Client is one open event stream watching the comments of a page.
type Client struct {
	Msg     chan string
	PageKey string
}

func NewClient(pageKey string) *Client {
	return &Client{
		Msg:     make(chan string, 8),
		PageKey: pageKey,
	}
}

type SSEClients struct {
	clients map[*Client]bool
	mu      sync.RWMutex
}

func NewSSEClients() *SSEClients {
	return &SSEClients{
		clients: make(map[*Client]bool),
	}
}

func (s *SSEClients) Add(client *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[client] = true
}

func (s *SSEClients) Delete(client *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[client]; !ok {
		return
	}
	delete(s.clients, client)
	close(client.Msg)
}

func (s *SSEClients) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Broadcast sends msg to every client watching pageKey. Slow clients miss
// the message rather than block the sender.
func (s *SSEClients) Broadcast(pageKey string, msg string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sent := 0
	for client := range s.clients {
		if client.PageKey != pageKey {
			continue
		}
		select {
		case client.Msg <- msg:
			sent++
		default:
		}
	}
	return sent
}
