// Package vecadmin provides the movie_admin virtual table, an operational
// check that an index attached with vec.Attach still matches the embeddings
// stored in a metadata database:
//
//	CREATE VIRTUAL TABLE temp.admin USING movie_admin('/data/movies.db');
//	SELECT op FROM admin WHERE op MATCH 'verify:build';
//
// A successful check returns one row, 'verified:<count>'.
package vecadmin
