// Package vec exposes a loaded movie index to SQL as the movie_knn virtual
// table, so nearest-neighbour rows can be joined with the metadata store:
//
//	vec.Attach("build", idx)
//	vec.Register(db)
//	CREATE VIRTUAL TABLE temp.knn USING movie_knn(build);
//	SELECT m.title, k.distance
//	  FROM knn k JOIN movies m ON m.row_idx = k.row_idx
//	 WHERE k.query MATCH ? AND k.k = 10
//	 ORDER BY k.distance;
//
// The query argument is an embedding BLOB, a JSON float array, or a
// comma-separated float list. k defaults to DefaultK.
package vec
