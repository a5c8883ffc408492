package sqlcheck

// reservedWords is the keyword dictionary used by the tokenizer. A bare
// word matching an entry (case-insensitive) becomes a TokenKeyword;
// everything else is an identifier. The list intentionally covers the
// SQL-92 core plus the dialect words the detectors look for, not every
// word any dialect reserves.
var reservedWords = map[string]bool{
	// Statement heads
	"SELECT": true, "INSERT": true, "UPDATE": true, "DELETE": true,
	"CREATE": true, "ALTER": true, "DROP": true, "TRUNCATE": true,
	"GRANT": true, "REVOKE": true, "MERGE": true, "REPLACE": true,
	"EXEC": true, "EXECUTE": true, "CALL": true, "WITH": true,
	"DECLARE": true, "SET": true, "BEGIN": true, "COMMIT": true,
	"ROLLBACK": true, "SAVEPOINT": true,

	// Clause structure
	"FROM": true, "WHERE": true, "JOIN": true, "INNER": true, "LEFT": true,
	"RIGHT": true, "FULL": true, "OUTER": true, "CROSS": true, "ON": true,
	"USING": true, "GROUP": true, "ORDER": true, "BY": true, "HAVING": true,
	"UNION": true, "INTERSECT": true, "EXCEPT": true, "ALL": true,
	"DISTINCT": true, "AS": true, "INTO": true, "VALUES": true,
	"LIMIT": true, "OFFSET": true, "TOP": true, "FETCH": true,
	"FIRST": true, "NEXT": true, "ROWS": true, "ONLY": true,
	"ASC": true, "DESC": true, "OVER": true, "PARTITION": true,
	"RECURSIVE": true, "RETURNING": true, "WAITFOR": true, "DELAY": true,

	// Predicates and literals
	"AND": true, "OR": true, "NOT": true, "IN": true, "EXISTS": true,
	"BETWEEN": true, "LIKE": true, "ILIKE": true, "IS": true, "NULL": true,
	"TRUE": true, "FALSE": true, "ANY": true, "SOME": true,
	"CASE": true, "WHEN": true, "THEN": true, "ELSE": true, "END": true,

	// Object words
	"TABLE": true, "INDEX": true, "VIEW": true, "DATABASE": true,
	"SCHEMA": true, "COLUMN": true, "TRIGGER": true, "PROCEDURE": true,
	"FUNCTION": true, "USER": true, "KEY": true, "PRIMARY": true,
	"FOREIGN": true, "REFERENCES": true, "CONSTRAINT": true,
	"CHECK": true, "DEFAULT": true,

	// File and batch words the injection detector matches on
	"OUTFILE": true, "DUMPFILE": true, "INFILE": true, "BULK": true,
	"LOAD": true, "DBCC": true, "SHUTDOWN": true,
}

// quotableReserved are reserved words that commonly collide with real
// table or column names. Using one unquoted earns a suggestion to
// bracket or quote it.
var quotableReserved = map[string]bool{
	"USER": true, "ORDER": true, "GROUP": true, "TABLE": true,
	"COLUMN": true, "INDEX": true, "VIEW": true, "KEY": true,
	"CHECK": true, "DEFAULT": true, "LEVEL": true, "STATUS": true,
	"PRIMARY": true, "REFERENCES": true, "CONSTRAINT": true,
}

// writeVerbs are statement verbs that modify data or schema. Any
// occurrence outside a string literal or comment is unsafe in a
// read-only context, wherever it appears in the stream.
var writeVerbs = map[string]bool{
	"INSERT": true, "UPDATE": true, "DELETE": true, "DROP": true,
	"CREATE": true, "ALTER": true, "TRUNCATE": true, "GRANT": true,
	"REVOKE": true, "MERGE": true, "REPLACE": true,
}

// aggregateFunctions is used by the structural analysis to tell GROUP BY
// with aggregation apart from GROUP BY used as a cheap DISTINCT.
var aggregateFunctions = map[string]bool{
	"COUNT": true, "SUM": true, "AVG": true, "MIN": true, "MAX": true,
	"STRING_AGG": true, "ARRAY_AGG": true, "GROUP_CONCAT": true,
}
