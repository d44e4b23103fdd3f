// Package database stores member records in PostgreSQL.
//
// A single pgx pool backs the members table. The schema is created on
// startup when missing, so a fresh database needs no migration step.
package database
