// GuardIT - Backup Job Status Monitoring and Real-Time Dashboards
// Copyright 2026 GuardIT contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/guardit/guardit

// Package alerting matches status messages against keyword rules and
// turns matches into persisted alerts, dashboard notifications, and
// webhook deliveries.
package alerting

import (
	"strings"
	"sync"

	"github.com/guardit/guardit/internal/models"
)

// Matcher finds keyword rules whose keyword occurs as a case-insensitive
// substring of a status message. It is built on an Aho-Corasick automaton
// so a message is scanned once regardless of how many rules exist,
// O(n + m + z) instead of O(n * rules).
//
// A Matcher is immutable after NewMatcher; rule changes are handled by
// building a new Matcher and swapping it in (see Engine.ReloadRules).
type Matcher struct {
	mu    sync.RWMutex
	root  *matcherNode
	rules []models.KeywordRule
}

// matcherNode is a node in the keyword automaton.
type matcherNode struct {
	children map[rune]*matcherNode
	failure  *matcherNode
	output   []int // indices into Matcher.rules ending at this node
}

func newMatcherNode() *matcherNode {
	return &matcherNode{children: make(map[rune]*matcherNode)}
}

// NewMatcher builds a matcher from the given rules. Inactive rules and
// rules with empty keywords are skipped. Matching is always
// case-insensitive.
func NewMatcher(rules []models.KeywordRule) *Matcher {
	m := &Matcher{root: newMatcherNode()}
	for _, rule := range rules {
		if !rule.IsActive || rule.Keyword == "" {
			continue
		}
		m.insert(len(m.rules), rule.Keyword)
		m.rules = append(m.rules, rule)
	}
	m.buildFailureLinks()
	return m
}

// insert adds one lowercased keyword to the trie.
func (m *Matcher) insert(index int, keyword string) {
	node := m.root
	for _, ch := range strings.ToLower(keyword) {
		if node.children[ch] == nil {
			node.children[ch] = newMatcherNode()
		}
		node = node.children[ch]
	}
	node.output = append(node.output, index)
}

// buildFailureLinks wires suffix links with a BFS over the trie.
func (m *Matcher) buildFailureLinks() {
	queue := make([]*matcherNode, 0, len(m.root.children))
	for _, child := range m.root.children {
		child.failure = m.root
		queue = append(queue, child)
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for ch, child := range current.children {
			queue = append(queue, child)

			fail := current.failure
			for fail != nil && fail.children[ch] == nil {
				fail = fail.failure
			}
			if fail == nil {
				child.failure = m.root
			} else {
				child.failure = fail.children[ch]
				child.output = append(child.output, child.failure.output...)
			}
		}
	}
}

// MatchedRules returns every rule whose keyword occurs in the message,
// at most once per rule no matter how often the keyword repeats. Rules
// are returned in the order they were added, so alert creation is
// deterministic.
func (m *Matcher) MatchedRules(message string) []models.KeywordRule {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.rules) == 0 || message == "" {
		return nil
	}

	matched := make([]bool, len(m.rules))
	node := m.root

	for _, ch := range strings.ToLower(message) {
		for node != nil && node.children[ch] == nil {
			node = node.failure
		}
		if node == nil {
			node = m.root
			continue
		}
		node = node.children[ch]
		for _, idx := range node.output {
			matched[idx] = true
		}
	}

	var rules []models.KeywordRule
	for i, hit := range matched {
		if hit {
			rules = append(rules, m.rules[i])
		}
	}
	return rules
}

// Contains reports whether any rule matches the message.
func (m *Matcher) Contains(message string) bool {
	return len(m.MatchedRules(message)) > 0
}

// RuleCount returns the number of rules loaded into the matcher.
func (m *Matcher) RuleCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rules)
}
