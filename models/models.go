package models

// This file serves as the central export point for all database models
// Import this package to access all model types

// All models are automatically exported from their respective files:
// - User, PracticeStats from user.go
// - Session from session.go
// - Question from question.go
// - Response from response.go

// Database schema overview:
// 1. users - Read-only mirror of the identity provider's user records
// 2. sessions - One interview-practice attempt, owned by exactly one user
// 3. questions - Prompts belonging to a session, ordered by order_index
// 4. responses - A candidate's answer to one question within one session
