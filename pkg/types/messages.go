// Package types documents the websocket protocol for client authors. The Go
// definitions live in internal/types.
package types

// Client -> Server
// start: {}
//   Any member, PreStart only, both teams need two players.
//
// sendClue:
//   clues: string[] // 1..3 entries, one per code digit; "-" or "" leaves a digit un-clued
//
// sendEnemyGuess:
//   guess: number[] // 3 distinct word indexes 0..3, opposing team only
//
// sendTeamGuess:
//   guess: number[] // active team, not the clue giver
//
// lateJoin:
//   team?: 0 | 1 // omitted picks the smaller team
//
// changeTeam:
//   team: 0 | 1 // PreStart only
//
// shuffle: {} // PreStart only
//
// Illegal actions are dropped without a reply.

// Server -> Client
// status:
//   version: number
//   status:
//     phase: "preStart" | "makeClues" | "enemyGuess" | "teamGuess"
//     activeTeam: 0 | 1
//     myTeam: 0 | 1 | -1
//     myStatus: "clues" | "teamGuess" | "enemyGuess" | "waiting" | "lateJoin"
//     words: string[]       // own team's secret words
//     ourClues: string[]    // latest clues of own team
//     theirClues: string[]  // latest clues of the other team
//     theirGuess: number[]  // other team's guess of our current code
//     key?: number[]        // only for the current clue giver
//     canStart?: boolean    // PreStart only
//     scores: [{interceptions, miscommunications}, {...}]
//     teamSizes: [number, number]
//
// history (members only, after start and after every round):
//   version: number
//   history: { team: RoundInfo[], enemy: RoundInfo[] } // oldest first
//   RoundInfo:
//     key?: number[]            // own team only
//     clueGiver: string
//     clues: string[]
//     enemyGuess: number[]
//     teamGuess: number[]
//     table?: (string|null)[4]  // clue placed under each word, own team only
//     guessTable?: (string|null)[4]
//     enemyTable?: (string|null)[4]
//     teamWrong: boolean
//     enemyRight: boolean
//
// players:
//   teams: [Seat[], Seat[]] // Seat: { username, name, role } where role is true for the clue giver
//
// error (transport problems only):
//   error: string
