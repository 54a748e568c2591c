// Command meatshop runs the storefront API and its operator tooling.
//
//	meatshop serve                      # HTTP API, cart stream, queue workers
//	meatshop migrate                    # run pending migrations
//	meatshop migrate:rollback
//	meatshop migrate:status
//	meatshop seed                       # demo account and order
//	meatshop route:list
//	meatshop catalog --group chicken
//	meatshop orders:track ORD001
//	meatshop orders:advance ORD002 shipped
//	meatshop queue:work -w 4            # needs QUEUE_DRIVER=redis
//
// Order commands act on persistent data only with REPO_DRIVER=database.
package main
